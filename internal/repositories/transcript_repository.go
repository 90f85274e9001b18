package repositories

import (
	"context"

	"voicehire/internal/models"

	"gorm.io/gorm"
)

type TranscriptRepository struct {
	DB *gorm.DB
}

// Append adds one utterance to the interview's durable transcript. Entries
// are never edited or removed afterwards.
func (r *TranscriptRepository) Append(ctx context.Context, interviewID uint, speaker models.Speaker, message string, questionIndex *int) error {
	entry := &models.TranscriptEntry{
		InterviewID:   interviewID,
		Speaker:       speaker,
		Message:       message,
		QuestionIndex: questionIndex,
	}
	return r.DB.WithContext(ctx).Create(entry).Error
}

// ListByInterview returns the transcript in creation order.
func (r *TranscriptRepository) ListByInterview(interviewID uint) ([]models.TranscriptEntry, error) {
	var entries []models.TranscriptEntry
	err := r.DB.Where("interview_id = ?", interviewID).Order("id ASC").Find(&entries).Error
	return entries, err
}
