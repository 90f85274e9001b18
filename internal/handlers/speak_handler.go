package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/tts"
	"voicehire/internal/utils"
)

// SpeakHandler renders interview questions as speech. Synthesis being down
// is a degradation, not an error: the response still succeeds so the
// session can fall back to a silent wait.
type SpeakHandler struct {
	Synth  tts.Synthesizer
	Logger *zap.Logger
}

func NewSpeakHandler(synth tts.Synthesizer, logger *zap.Logger) *SpeakHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeakHandler{Synth: synth, Logger: logger}
}

func (h *SpeakHandler) SpeakQuestion(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SpeakRequest](r)

	if h.Synth == nil || !h.Synth.Configured() {
		utils.JSON(w, http.StatusOK, models.SpeakResponse{
			Success: false,
			Message: "speech synthesis is not configured",
		})
		return
	}

	audioURL, err := h.Synth.Synthesize(r.Context(), req.Question)
	if err != nil {
		if !errors.Is(err, tts.ErrNotConfigured) {
			h.Logger.Warn("speech synthesis failed",
				zap.Uint("interview_id", req.InterviewID), zap.Error(err))
		}
		utils.JSON(w, http.StatusOK, models.SpeakResponse{
			Success: false,
			Message: "speech synthesis unavailable",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.SpeakResponse{
		Success:  true,
		AudioURL: audioURL,
		Message:  "ok",
	})
}
