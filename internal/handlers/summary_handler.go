package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"voicehire/internal/llm"
	appmw "voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/prompts"
	"voicehire/internal/repositories"
	"voicehire/internal/utils"
)

// SummaryHandler generates the AI review of a finished interview and
// persists it onto the interview record.
type SummaryHandler struct {
	Provider   llm.Provider
	Prompts    prompts.PromptProvider
	Interviews *repositories.InterviewRepository
	Logger     *zap.Logger
}

func NewSummaryHandler(provider llm.Provider, promptProvider prompts.PromptProvider, interviews *repositories.InterviewRepository, logger *zap.Logger) *SummaryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryHandler{Provider: provider, Prompts: promptProvider, Interviews: interviews, Logger: logger}
}

// llmReview is the JSON shape the model is instructed to return.
type llmReview struct {
	Summary string `json:"summary"`
	Score   int    `json:"score"`
}

func (h *SummaryHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	req := appmw.GetValidatedRequest[*models.SummaryRequest](r)

	if h.Provider == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code: "llm_unconfigured", Message: "AI review is not configured",
		})
		return
	}

	prompt, err := h.Prompts.BuildPrompt("summary", map[string]string{
		"CandidateName": req.CandidateName,
		"JobTitle":      req.JobTitle,
		"Conversation":  formatConversation(req.Transcripts),
	})
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "prompt_failed", Message: "failed to build review prompt",
		})
		return
	}

	requestID := middleware.GetReqID(r.Context())
	completion, err := h.Provider.GenerateCompletion(r.Context(), prompt, requestID)
	if err != nil {
		h.Logger.Error("failed to generate interview summary",
			zap.Uint("interview_id", req.InterviewID), zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code: "llm_failed", Message: "failed to generate interview review",
		})
		return
	}

	review, err := parseReview(completion.Text)
	if err != nil {
		h.Logger.Warn("model returned unparseable review",
			zap.Uint("interview_id", req.InterviewID), zap.Error(err))
		// Degrade to the raw text with a neutral score rather than losing
		// the review entirely.
		review = llmReview{Summary: utils.StripFences(completion.Text), Score: 5}
	}
	review.Score = clampScore(review.Score)

	if req.InterviewID != 0 {
		if err := h.Interviews.SaveSummary(req.InterviewID, review.Summary, review.Score); err != nil {
			h.Logger.Warn("failed to persist interview summary",
				zap.Uint("interview_id", req.InterviewID), zap.Error(err))
		}
	}

	utils.JSON(w, http.StatusOK, models.SummaryResponse{Summary: review.Summary, Score: review.Score})
}

func formatConversation(turns []models.TranscriptTurn) string {
	var b strings.Builder
	for _, turn := range turns {
		if turn.Speaker == models.SpeakerAI {
			b.WriteString("Interviewer: ")
		} else {
			b.WriteString("Candidate: ")
		}
		b.WriteString(turn.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func parseReview(text string) (llmReview, error) {
	var review llmReview
	if err := json.Unmarshal([]byte(utils.StripFences(text)), &review); err != nil {
		return llmReview{}, err
	}
	if strings.TrimSpace(review.Summary) == "" {
		return llmReview{}, &models.ErrorResponse{Code: "empty_summary", Message: "model returned no summary"}
	}
	return review, nil
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
