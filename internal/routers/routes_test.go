package routers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"voicehire/internal/handlers"
	"voicehire/internal/livekit"
	"voicehire/internal/repositories"
	"voicehire/internal/session"
	"voicehire/internal/testhelpers"
)

func buildRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db := testhelpers.SetupTestDB(t)

	userRepo := &repositories.UserRepository{DB: db}
	jobRepo := &repositories.JobRepository{DB: db}
	candidateRepo := &repositories.CandidateRepository{DB: db}
	interviewRepo := &repositories.InterviewRepository{DB: db}
	transcriptRepo := &repositories.TranscriptRepository{DB: db}
	tokens := livekit.NewTokenIssuer("key", "secret", "ws://localhost:7880", time.Hour)

	auth := handlers.NewAuthHandler(userRepo, "secret")
	jobs := handlers.NewJobHandler(jobRepo)
	candidates := handlers.NewCandidateHandler(candidateRepo, jobRepo, interviewRepo, transcriptRepo)
	portal := handlers.NewPortalHandler(candidateRepo, interviewRepo, transcriptRepo, tokens)
	live := handlers.NewLiveHandler(candidateRepo, interviewRepo, transcriptRepo, nil, tokens, nil, nil, nil, session.Config{})
	tokenHandler := handlers.NewTokenHandler(tokens, "")
	speak := handlers.NewSpeakHandler(nil, nil)
	followup := handlers.NewFollowupHandler(nil, nil, nil)
	summary := handlers.NewSummaryHandler(nil, nil, interviewRepo, nil)
	health := handlers.NewHealthHandler(db, nil, tokens, nil, nil)

	router := chi.NewRouter()
	HealthRoutes(router, health)
	AdminRoutes(router, auth)
	AuthRoutes(router, auth)
	DashboardRoutes(router, "secret", jobs, candidates, summary)
	PortalRoutes(router, portal, live)
	MediaRoutes(router, tokenHandler, speak, followup)
	return router
}

func TestAllRoutesRegistered(t *testing.T) {
	router := buildRouter(t)

	paths := map[string]bool{}
	if err := chi.Walk(router, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		paths[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("failed walking routes: %v", err)
	}

	expected := []string{
		"GET /api/health",
		"GET /healthz",
		"POST /api/admin/create-user",
		"POST /api/login",
		"GET /api/jobs/",
		"POST /api/jobs/",
		"GET /api/jobs/{id}",
		"PUT /api/jobs/{id}",
		"DELETE /api/jobs/{id}",
		"GET /api/candidates/",
		"POST /api/candidates/",
		"GET /api/candidates/{id}",
		"PUT /api/candidates/{id}/status",
		"PUT /api/candidates/{id}/notes",
		"DELETE /api/candidates/{id}",
		"POST /api/generate-summary",
		"GET /api/portal/{accessToken}/",
		"POST /api/portal/{accessToken}/start",
		"GET /api/portal/{accessToken}/transcripts",
		"GET /api/portal/{accessToken}/live",
		"POST /api/livekit-token",
		"GET /api/webrtc-config",
		"POST /api/speak-question",
		"POST /api/generate-response",
	}
	for _, route := range expected {
		if !paths[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	router := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestHealthRouteServes(t *testing.T) {
	router := buildRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/api/health not serving, got %d", rec.Code)
	}
}
