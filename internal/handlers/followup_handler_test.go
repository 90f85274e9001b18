package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicehire/internal/llm"
	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/prompts"
)

func newFollowupRouter(t *testing.T, provider llm.Provider) *chi.Mux {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)

	handler := NewFollowupHandler(provider, pm, nil)
	router := chi.NewRouter()
	router.With(middleware.ValidateRequest[*models.FollowupRequest]()).Post("/api/generate-response", handler.GenerateFollowup)
	return router
}

func TestGenerateFollowup(t *testing.T) {
	router := newFollowupRouter(t, &stubProvider{text: "  That sounds like solid experience. "})

	rec := postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		Question:        "Tell me about yourself",
		CandidateAnswer: "I build Go services",
		Context:         "Backend Engineer interview",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.FollowupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "That sounds like solid experience.", resp.Response)
}

func TestGenerateFollowupDefaultsContext(t *testing.T) {
	// An omitted context must not fail prompt building.
	router := newFollowupRouter(t, &stubProvider{text: "Understood."})

	rec := postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		Question:        "Why this role?",
		CandidateAnswer: "Growth",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateFollowupProviderUnconfigured(t *testing.T) {
	router := newFollowupRouter(t, nil)

	rec := postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		Question:        "Why this role?",
		CandidateAnswer: "Growth",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "llm_unconfigured", errResp.Code)
}

func TestGenerateFollowupProviderFailure(t *testing.T) {
	router := newFollowupRouter(t, &stubProvider{err: errors.New("quota exceeded")})

	rec := postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		Question:        "Why this role?",
		CandidateAnswer: "Growth",
	})
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGenerateFollowupValidation(t *testing.T) {
	router := newFollowupRouter(t, &stubProvider{text: "ok"})

	rec := postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		CandidateAnswer: "Growth",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/api/generate-response", models.FollowupRequest{
		Question: "Why this role?",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
