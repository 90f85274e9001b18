package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"voicehire/internal/llm"
	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/prompts"
	"voicehire/internal/repositories"
	"voicehire/internal/testhelpers"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) GenerateCompletion(ctx context.Context, prompt, requestID string) (*llm.Completion, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{Text: s.text, Provider: "stub", Model: "stub"}, nil
}

func (s *stubProvider) GetProviderName() string { return "stub" }

func newSummaryRouter(t *testing.T, provider llm.Provider) (*chi.Mux, *gorm.DB) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)

	handler := NewSummaryHandler(provider, pm, &repositories.InterviewRepository{DB: db}, nil)
	router := chi.NewRouter()
	router.With(middleware.ValidateRequest[*models.SummaryRequest]()).Post("/api/generate-summary", handler.GenerateSummary)
	return router, db
}

func summaryRequest(interviewID uint) models.SummaryRequest {
	return models.SummaryRequest{
		CandidateName: "Ada",
		JobTitle:      "Backend Engineer",
		InterviewID:   interviewID,
		Transcripts: []models.TranscriptTurn{
			{Speaker: models.SpeakerAI, Message: "Tell me about yourself"},
			{Speaker: models.SpeakerCandidate, Message: "I build Go services"},
		},
	}
}

func TestGenerateSummaryParsesFencedJSON(t *testing.T) {
	provider := &stubProvider{text: "```json\n{\"summary\": \"Clear, confident answers.\", \"score\": 8}\n```"}
	router, db := newSummaryRouter(t, provider)

	job := models.Job{Title: "Backend Engineer"}
	require.NoError(t, db.Create(&job).Error)
	candidate := models.Candidate{Name: "Ada", Email: "ada@example.com", JobID: job.ID, AccessToken: "tok"}
	require.NoError(t, db.Create(&candidate).Error)
	interview := models.Interview{CandidateID: candidate.ID, Status: models.InterviewStatusCompleted}
	require.NoError(t, db.Create(&interview).Error)

	rec := postJSON(t, router, "/api/generate-summary", summaryRequest(interview.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Clear, confident answers.", resp.Summary)
	assert.Equal(t, 8, resp.Score)

	// The review is persisted onto the interview record.
	var stored models.Interview
	require.NoError(t, db.First(&stored, interview.ID).Error)
	assert.Equal(t, "Clear, confident answers.", stored.AISummary)
	require.NotNil(t, stored.AIScore)
	assert.Equal(t, 8, *stored.AIScore)
}

func TestGenerateSummaryClampsScore(t *testing.T) {
	provider := &stubProvider{text: `{"summary": "Exceptional.", "score": 14}`}
	router, _ := newSummaryRouter(t, provider)

	rec := postJSON(t, router, "/api/generate-summary", summaryRequest(0))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 10, resp.Score)
}

func TestGenerateSummaryUnparseableFallsBackToRawText(t *testing.T) {
	provider := &stubProvider{text: "The candidate did quite well overall."}
	router, _ := newSummaryRouter(t, provider)

	rec := postJSON(t, router, "/api/generate-summary", summaryRequest(0))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The candidate did quite well overall.", resp.Summary)
	assert.Equal(t, 5, resp.Score)
}

func TestGenerateSummaryProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exceeded")}
	router, _ := newSummaryRouter(t, provider)

	rec := postJSON(t, router, "/api/generate-summary", summaryRequest(0))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerateSummaryUnconfigured(t *testing.T) {
	router, _ := newSummaryRouter(t, nil)

	rec := postJSON(t, router, "/api/generate-summary", summaryRequest(0))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGenerateSummaryRejectsEmptyTranscript(t *testing.T) {
	router, _ := newSummaryRouter(t, &stubProvider{text: "{}"})

	rec := postJSON(t, router, "/api/generate-summary", models.SummaryRequest{CandidateName: "Ada"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
