package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voicehire/internal/models"

	"gorm.io/gorm"
)

var ErrInterviewNotFound = errors.New("interview not found")

type InterviewRepository struct {
	DB *gorm.DB
}

func (r *InterviewRepository) GetInterviewByID(id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.First(&interview, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

// LatestByCandidate returns the most recent interview for a candidate, or
// ErrInterviewNotFound if none exists yet.
func (r *InterviewRepository) LatestByCandidate(candidateID uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.Where("candidate_id = ?", candidateID).Order("created_at DESC").First(&interview).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

// CreateOrResume returns the candidate's current interview, reusing an
// existing pending or in_progress record so re-entry resumes rather than
// duplicates. A fresh record is created after a completed or failed attempt.
func (r *InterviewRepository) CreateOrResume(candidateID uint) (*models.Interview, error) {
	existing, err := r.LatestByCandidate(candidateID)
	if err != nil && !errors.Is(err, ErrInterviewNotFound) {
		return nil, err
	}
	if existing != nil &&
		(existing.Status == models.InterviewStatusPending || existing.Status == models.InterviewStatusInProgress) {
		return existing, nil
	}

	interview := &models.Interview{
		CandidateID: candidateID,
		Status:      models.InterviewStatusPending,
		RoomName:    fmt.Sprintf("interview-%d", candidateID),
	}
	if err := r.DB.Create(interview).Error; err != nil {
		return nil, err
	}
	return interview, nil
}

// MarkStarted moves the interview to in_progress. The start timestamp is
// written once; resuming keeps the original.
func (r *InterviewRepository) MarkStarted(ctx context.Context, id uint, startedAt time.Time) error {
	var interview models.Interview
	if err := r.DB.WithContext(ctx).First(&interview, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInterviewNotFound
		}
		return err
	}
	updates := map[string]any{"status": models.InterviewStatusInProgress}
	if interview.StartedAt == nil {
		updates["started_at"] = startedAt
	}
	return r.DB.WithContext(ctx).Model(&interview).Updates(updates).Error
}

// MarkCompleted finalizes the interview. Idempotent: a second call leaves
// the original completion timestamp untouched.
func (r *InterviewRepository) MarkCompleted(ctx context.Context, id uint, completedAt time.Time) error {
	var interview models.Interview
	if err := r.DB.WithContext(ctx).First(&interview, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInterviewNotFound
		}
		return err
	}
	if interview.Status == models.InterviewStatusCompleted {
		return nil
	}
	return r.DB.WithContext(ctx).Model(&interview).Updates(map[string]any{
		"status":       models.InterviewStatusCompleted,
		"completed_at": completedAt,
	}).Error
}

func (r *InterviewRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	result := r.DB.WithContext(ctx).Model(&models.Interview{}).Where("id = ?", id).
		Update("status", models.InterviewStatusFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// SaveSummary persists an AI review onto the interview record.
func (r *InterviewRepository) SaveSummary(id uint, summary string, score int) error {
	result := r.DB.Model(&models.Interview{}).Where("id = ?", id).Updates(map[string]any{
		"ai_summary": summary,
		"ai_score":   score,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// FailStale marks interviews stuck in_progress past the TTL as failed and
// returns how many were swept.
func (r *InterviewRepository) FailStale(ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	result := r.DB.Model(&models.Interview{}).
		Where("status = ? AND updated_at < ?", models.InterviewStatusInProgress, cutoff).
		Update("status", models.InterviewStatusFailed)
	return result.RowsAffected, result.Error
}
