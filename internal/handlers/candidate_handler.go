package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"voicehire/internal/middleware"
	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/utils"
)

// CandidateHandler manages candidates for the HR dashboard. The interview
// link returned on creation embeds the candidate's access token.
type CandidateHandler struct {
	Candidates *repositories.CandidateRepository
	Jobs       *repositories.JobRepository
	Interviews *repositories.InterviewRepository
	Transcript *repositories.TranscriptRepository
}

func NewCandidateHandler(
	candidates *repositories.CandidateRepository,
	jobs *repositories.JobRepository,
	interviews *repositories.InterviewRepository,
	transcripts *repositories.TranscriptRepository,
) *CandidateHandler {
	return &CandidateHandler{
		Candidates: candidates,
		Jobs:       jobs,
		Interviews: interviews,
		Transcript: transcripts,
	}
}

type candidateResponse struct {
	models.Candidate
	InterviewLink string `json:"interviewLink"`
}

func candidateView(c models.Candidate) candidateResponse {
	return candidateResponse{Candidate: c, InterviewLink: "/interview/" + c.AccessToken}
}

func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CandidateRequest](r)

	if _, err := h.Jobs.GetJobByID(req.JobID); err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "job_not_found", Message: "job not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to load job",
		})
		return
	}

	candidate := &models.Candidate{
		Name:            req.Name,
		Email:           req.Email,
		JobID:           req.JobID,
		CustomQuestions: req.CustomQuestions,
		AccessToken:     uuid.New().String(),
		Status:          models.CandidateStatusCreated,
	}
	if err := h.Candidates.CreateCandidate(candidate); err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "create_failed", Message: "failed to create candidate",
		})
		return
	}
	utils.JSON(w, http.StatusCreated, candidateView(*candidate))
}

func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.Candidates.ListCandidates()
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "list_failed", Message: "failed to list candidates",
		})
		return
	}
	views := make([]candidateResponse, 0, len(candidates))
	for _, c := range candidates {
		views = append(views, candidateView(c))
	}
	utils.JSON(w, http.StatusOK, views)
}

// GetCandidate returns the candidate with their latest interview and its
// transcript, which is what the review screen renders.
func (h *CandidateHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid candidate id"})
		return
	}
	candidate, err := h.Candidates.GetCandidateByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "candidate not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to load candidate",
		})
		return
	}

	payload := map[string]any{"candidate": candidateView(*candidate)}
	if interview, err := h.Interviews.LatestByCandidate(id); err == nil {
		payload["interview"] = interview
		if entries, err := h.Transcript.ListByInterview(interview.ID); err == nil {
			payload["transcripts"] = entries
		}
	}
	utils.JSON(w, http.StatusOK, payload)
}

func (h *CandidateHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid candidate id"})
		return
	}
	req := middleware.GetValidatedRequest[*models.StatusUpdateRequest](r)

	if err := h.Candidates.UpdateStatus(id, req.Status); err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "candidate not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "update_failed", Message: "failed to update status",
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

func (h *CandidateHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid candidate id"})
		return
	}
	req := middleware.GetValidatedRequest[*models.NotesRequest](r)

	if err := h.Candidates.UpdateNotes(id, req.Notes); err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "candidate not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "update_failed", Message: "failed to update notes",
		})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"notes": req.Notes})
}

func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		utils.JSON(w, http.StatusBadRequest, models.ErrorResponse{Code: "invalid_id", Message: "invalid candidate id"})
		return
	}
	if err := h.Candidates.DeleteCandidate(id); err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{Code: "not_found", Message: "candidate not found"})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "delete_failed", Message: "failed to delete candidate",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
