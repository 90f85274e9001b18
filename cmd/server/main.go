package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voicehire/internal/config"
	"voicehire/internal/handlers"
	"voicehire/internal/jobs"
	"voicehire/internal/livekit"
	"voicehire/internal/llm"
	_ "voicehire/internal/llm/gemini"
	"voicehire/internal/metrics"
	"voicehire/internal/models"
	"voicehire/internal/prompts"
	"voicehire/internal/repositories"
	"voicehire/internal/rooms"
	"voicehire/internal/routers"
	"voicehire/internal/session"
	"voicehire/internal/tts"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Candidate{},
		&models.Interview{},
		&models.TranscriptEntry{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	userRepo := &repositories.UserRepository{DB: db}
	jobRepo := &repositories.JobRepository{DB: db}
	candidateRepo := &repositories.CandidateRepository{DB: db}
	interviewRepo := &repositories.InterviewRepository{DB: db}
	transcriptRepo := &repositories.TranscriptRepository{DB: db}

	tokens := livekit.NewTokenIssuer(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitURL, cfg.TokenTTL)
	if !tokens.Configured() {
		logger.Warn("LiveKit credentials not set, room join tokens disabled")
	}

	var synth tts.Synthesizer
	if cfg.PiperURL != "" {
		synth = tts.NewPiperClient(cfg.PiperURL)
	} else {
		logger.Warn("PIPER_URL not set, speech synthesis disabled")
	}

	// AI review is optional: without a Gemini key the summary endpoint
	// reports itself unconfigured instead of failing startup.
	var aiProvider llm.Provider
	if cfg.GeminiAPIKey != "" {
		aiProvider, err = llm.NewProvider("gemini")
		if err != nil {
			logger.Error("Failed to initialize AI provider, summaries disabled", zap.Error(err))
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI summaries disabled")
	}

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to load prompt templates", zap.Error(err))
	}

	m := metrics.New()
	registry := rooms.NewRegistry(rdb, logger, cfg.SessionTTL)

	sessionCfg := session.Config{
		PlaybackFallback:      cfg.PlaybackFallback,
		InterQuestionPause:    cfg.InterQuestionPause,
		CaptureRestartCap:     cfg.CaptureRestartCap,
		CaptureRestartBackoff: cfg.CaptureRestartBackoff,
		ListeningCap:          cfg.ListeningCap,
	}

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	jobHandler := handlers.NewJobHandler(jobRepo)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, jobRepo, interviewRepo, transcriptRepo)
	portalHandler := handlers.NewPortalHandler(candidateRepo, interviewRepo, transcriptRepo, tokens)
	liveHandler := handlers.NewLiveHandler(candidateRepo, interviewRepo, transcriptRepo, registry, tokens, synth, m, logger, sessionCfg)
	tokenHandler := handlers.NewTokenHandler(tokens, os.Getenv("STUN_SERVER"))
	speakHandler := handlers.NewSpeakHandler(synth, logger)
	followupHandler := handlers.NewFollowupHandler(aiProvider, promptManager, logger)
	summaryHandler := handlers.NewSummaryHandler(aiProvider, promptManager, interviewRepo, logger)
	healthHandler := handlers.NewHealthHandler(db, rdb, tokens, synth, aiProvider)

	sweeper := jobs.NewSweeper(interviewRepo, cfg.SessionTTL, cfg.SweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start stale interview sweeper", zap.Error(err))
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimw.RequestID, chimw.RealIP, chimw.Logger, chimw.Recoverer)

	routers.HealthRoutes(router, healthHandler)
	routers.AdminRoutes(router, authHandler)
	routers.AuthRoutes(router, authHandler)
	routers.DashboardRoutes(router, cfg.JWTSecret, jobHandler, candidateHandler, summaryHandler)
	routers.PortalRoutes(router, portalHandler, liveHandler)
	routers.MediaRoutes(router, tokenHandler, speakHandler, followupHandler)
	router.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the live interview channel is a long-lived
		// websocket.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("voicehire server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("voicehire server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	sweeper.Stop()
	registry.Shutdown(ctx)
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close failed", zap.Error(err))
	}
	logger.Info("voicehire server stopped")
}
