package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"voicehire/internal/llm"
	appmw "voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/prompts"
	"voicehire/internal/utils"
)

// FollowupHandler generates the interviewer's brief acknowledgment of an
// answer, spoken before the next question.
type FollowupHandler struct {
	Provider llm.Provider
	Prompts  prompts.PromptProvider
	Logger   *zap.Logger
}

func NewFollowupHandler(provider llm.Provider, promptProvider prompts.PromptProvider, logger *zap.Logger) *FollowupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowupHandler{Provider: provider, Prompts: promptProvider, Logger: logger}
}

func (h *FollowupHandler) GenerateFollowup(w http.ResponseWriter, r *http.Request) {
	req := appmw.GetValidatedRequest[*models.FollowupRequest](r)

	if h.Provider == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
			Code: "llm_unconfigured", Message: "AI responses are not configured",
		})
		return
	}

	interviewContext := strings.TrimSpace(req.Context)
	if interviewContext == "" {
		interviewContext = "General interview"
	}

	prompt, err := h.Prompts.BuildPrompt("followup", map[string]string{
		"Context":  interviewContext,
		"Question": req.Question,
		"Answer":   req.CandidateAnswer,
	})
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "prompt_failed", Message: "failed to build follow-up prompt",
		})
		return
	}

	completion, err := h.Provider.GenerateCompletion(r.Context(), prompt, middleware.GetReqID(r.Context()))
	if err != nil {
		h.Logger.Error("failed to generate follow-up response", zap.Error(err))
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code: "llm_failed", Message: "failed to generate a response",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.FollowupResponse{Response: strings.TrimSpace(completion.Text)})
}
