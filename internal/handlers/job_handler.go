package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/utils"
)

// JobHandler manages job posting CRUD for the HR dashboard.
type JobHandler struct {
	Repo *repositories.JobRepository
}

func NewJobHandler(repo *repositories.JobRepository) *JobHandler {
	return &JobHandler{Repo: repo}
}

func parseIDParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.JobRequest](r)

	job := &models.Job{
		Title:            req.Title,
		Description:      req.Description,
		DefaultQuestions: req.DefaultQuestions,
	}
	if err := h.Repo.CreateJob(job); err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "create_failed", Message: "failed to create job",
		})
		return
	}
	utils.JSON(w, http.StatusCreated, job)
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Repo.ListJobs()
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "list_failed", Message: "failed to list jobs",
		})
		return
	}
	utils.JSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid job id"})
		return
	}
	job, err := h.Repo.GetJobByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "job not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to load job",
		})
		return
	}
	utils.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid job id"})
		return
	}
	req := middleware.GetValidatedRequest[*models.JobRequest](r)

	job, err := h.Repo.UpdateJob(id, &models.Job{
		Title:            req.Title,
		Description:      req.Description,
		DefaultQuestions: req.DefaultQuestions,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "job not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "update_failed", Message: "failed to update job",
		})
		return
	}
	utils.JSON(w, http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid job id"})
		return
	}
	if err := h.Repo.DeleteJob(id); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "job not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "delete_failed", Message: "failed to delete job",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
