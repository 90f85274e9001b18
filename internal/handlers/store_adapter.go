package handlers

import (
	"context"
	"time"

	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/session"
)

// sessionStore adapts the repositories to the session controller's Store
// contract so the controller stays ignorant of gorm.
type sessionStore struct {
	interviews *repositories.InterviewRepository
	candidates *repositories.CandidateRepository
}

var _ session.Store = (*sessionStore)(nil)

func newSessionStore(interviews *repositories.InterviewRepository, candidates *repositories.CandidateRepository) *sessionStore {
	return &sessionStore{interviews: interviews, candidates: candidates}
}

func (s *sessionStore) MarkInterviewStarted(ctx context.Context, id uint, at time.Time) error {
	return s.interviews.MarkStarted(ctx, id, at)
}

func (s *sessionStore) MarkInterviewCompleted(ctx context.Context, id uint, at time.Time) error {
	return s.interviews.MarkCompleted(ctx, id, at)
}

func (s *sessionStore) MarkInterviewFailed(ctx context.Context, id uint, reason string) error {
	return s.interviews.MarkFailed(ctx, id, reason)
}

func (s *sessionStore) MarkCandidateCompleted(ctx context.Context, id uint) error {
	return s.candidates.UpdateStatus(id, models.CandidateStatusCompleted)
}
