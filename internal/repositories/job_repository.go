package repositories

import (
	"errors"

	"voicehire/internal/models"

	"gorm.io/gorm"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository struct {
	DB *gorm.DB
}

func (r *JobRepository) CreateJob(job *models.Job) error {
	return r.DB.Create(job).Error
}

func (r *JobRepository) GetJobByID(id uint) (*models.Job, error) {
	var job models.Job
	err := r.DB.First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	return &job, err
}

func (r *JobRepository) ListJobs() ([]models.Job, error) {
	var jobs []models.Job
	err := r.DB.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) UpdateJob(id uint, updates *models.Job) (*models.Job, error) {
	var job models.Job
	if err := r.DB.First(&job, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	if err := r.DB.Model(&job).Updates(map[string]any{
		"title":             updates.Title,
		"description":       updates.Description,
		"default_questions": updates.DefaultQuestions,
	}).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) DeleteJob(id uint) error {
	result := r.DB.Select("Candidates").Delete(&models.Job{Model: gorm.Model{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}
