package repositories

import (
	"errors"

	"voicehire/internal/models"

	"gorm.io/gorm"
)

var ErrCandidateNotFound = errors.New("candidate not found")

type CandidateRepository struct {
	DB *gorm.DB
}

func (r *CandidateRepository) CreateCandidate(candidate *models.Candidate) error {
	return r.DB.Create(candidate).Error
}

func (r *CandidateRepository) GetCandidateByID(id uint) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.Preload("Job").First(&candidate, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	return &candidate, err
}

// GetCandidateByAccessToken resolves a portal link token to its candidate
// and owning job. Not found is terminal for the caller, never retried.
func (r *CandidateRepository) GetCandidateByAccessToken(token string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.Preload("Job").First(&candidate, "access_token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	return &candidate, err
}

func (r *CandidateRepository) ListCandidates() ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.DB.Preload("Job").Order("created_at DESC").Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepository) ListCandidatesByJob(jobID uint) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.DB.Where("job_id = ?", jobID).Order("created_at DESC").Find(&candidates).Error
	return candidates, err
}

func (r *CandidateRepository) UpdateStatus(id uint, status string) error {
	result := r.DB.Model(&models.Candidate{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) UpdateNotes(id uint, notes string) error {
	result := r.DB.Model(&models.Candidate{}).Where("id = ?", id).Update("hr_notes", notes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// DeleteCandidate removes the candidate together with its interviews and
// their transcripts.
func (r *CandidateRepository) DeleteCandidate(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var interviews []models.Interview
		if err := tx.Where("candidate_id = ?", id).Find(&interviews).Error; err != nil {
			return err
		}
		for _, iv := range interviews {
			if err := tx.Where("interview_id = ?", iv.ID).Delete(&models.TranscriptEntry{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("candidate_id = ?", id).Delete(&models.Interview{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Candidate{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCandidateNotFound
		}
		return nil
	})
}
