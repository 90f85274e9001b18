package handlers

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voicehire/internal/livekit"
	"voicehire/internal/llm"
	"voicehire/internal/tts"
	"voicehire/internal/utils"
)

// HealthHandler reports liveness plus which optional collaborators are
// configured, so a degraded deployment is visible at a glance.
type HealthHandler struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Tokens *livekit.TokenIssuer
	Synth  tts.Synthesizer
	LLM    llm.Provider
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, tokens *livekit.TokenIssuer, synth tts.Synthesizer, provider llm.Provider) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb, Tokens: tokens, Synth: synth, LLM: provider}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := false
	if h.DB != nil {
		if sqlDB, err := h.DB.DB(); err == nil {
			dbOK = sqlDB.PingContext(r.Context()) == nil
		}
	}
	redisOK := h.Redis != nil && h.Redis.Ping(r.Context()).Err() == nil

	status := "ok"
	code := http.StatusOK
	if !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	utils.JSON(w, code, map[string]any{
		"status": status,
		"components": map[string]bool{
			"database": dbOK,
			"redis":    redisOK,
			"livekit":  h.Tokens != nil && h.Tokens.Configured(),
			"tts":      h.Synth != nil && h.Synth.Configured(),
			"llm":      h.LLM != nil,
		},
	})
}
