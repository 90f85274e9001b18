package routers

import (
	"github.com/go-chi/chi/v5"

	"voicehire/internal/handlers"
	"voicehire/internal/middleware"
	"voicehire/internal/models"
)

// AdminRoutes registers operator-only endpoints.
func AdminRoutes(router *chi.Mux, auth *handlers.AuthHandler) {
	router.Route("/api/admin", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.RegisterRequest]()).Post("/create-user", auth.RegisterHandler)
	})
}

// AuthRoutes registers HR login.
func AuthRoutes(router *chi.Mux, auth *handlers.AuthHandler) {
	router.With(middleware.ValidateRequest[*models.LoginRequest]()).Post("/api/login", auth.LoginHandler)
}

// DashboardRoutes registers the HR dashboard API. Everything here requires
// a valid HR token.
func DashboardRoutes(router *chi.Mux, jwtSecret string, jobs *handlers.JobHandler, candidates *handlers.CandidateHandler, summary *handlers.SummaryHandler) {
	router.Group(func(g chi.Router) {
		g.Use(middleware.RequireAuth(jwtSecret))

		g.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", jobs.ListJobs)
			r.With(middleware.ValidateRequest[*models.JobRequest]()).Post("/", jobs.CreateJob)
			r.Get("/{id}", jobs.GetJob)
			r.With(middleware.ValidateRequest[*models.JobRequest]()).Put("/{id}", jobs.UpdateJob)
			r.Delete("/{id}", jobs.DeleteJob)
		})

		g.Route("/api/candidates", func(r chi.Router) {
			r.Get("/", candidates.ListCandidates)
			r.With(middleware.ValidateRequest[*models.CandidateRequest]()).Post("/", candidates.CreateCandidate)
			r.Get("/{id}", candidates.GetCandidate)
			r.With(middleware.ValidateRequest[*models.StatusUpdateRequest]()).Put("/{id}/status", candidates.UpdateStatus)
			r.With(middleware.ValidateRequest[*models.NotesRequest]()).Put("/{id}/notes", candidates.UpdateNotes)
			r.Delete("/{id}", candidates.DeleteCandidate)
		})

		g.With(middleware.ValidateRequest[*models.SummaryRequest]()).Post("/api/generate-summary", summary.GenerateSummary)
	})
}

// PortalRoutes registers the candidate-facing portal. Candidates are
// identified only by the access token in their interview link.
func PortalRoutes(router *chi.Mux, portal *handlers.PortalHandler, live *handlers.LiveHandler) {
	router.Route("/api/portal/{accessToken}", func(r chi.Router) {
		r.Get("/", portal.Resolve)
		r.Post("/start", portal.Start)
		r.Get("/transcripts", portal.Transcripts)
		r.Get("/live", live.Serve)
	})
}

// MediaRoutes registers the room credential, speech, and conversational
// response endpoints used during a live interview.
func MediaRoutes(router *chi.Mux, tokens *handlers.TokenHandler, speak *handlers.SpeakHandler, followup *handlers.FollowupHandler) {
	router.With(middleware.ValidateRequest[*models.TokenRequest]()).Post("/api/livekit-token", tokens.IssueToken)
	router.Get("/api/webrtc-config", tokens.WebRTCConfig)
	router.With(middleware.ValidateRequest[*models.SpeakRequest]()).Post("/api/speak-question", speak.SpeakQuestion)
	router.With(middleware.ValidateRequest[*models.FollowupRequest]()).Post("/api/generate-response", followup.GenerateFollowup)
}

// HealthRoutes registers liveness endpoints.
func HealthRoutes(router *chi.Mux, health *handlers.HealthHandler) {
	router.Get("/api/health", health.Health)
	router.Get("/healthz", health.Health)
}
