package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voicehire/internal/livekit"
	"voicehire/internal/models"
	"voicehire/internal/repositories"
	"voicehire/internal/utils"
)

// PortalHandler serves the candidate-facing interview portal. Candidates
// authenticate solely with the access token embedded in their link.
type PortalHandler struct {
	Candidates *repositories.CandidateRepository
	Interviews *repositories.InterviewRepository
	Transcript *repositories.TranscriptRepository
	Tokens     *livekit.TokenIssuer
}

func NewPortalHandler(
	candidates *repositories.CandidateRepository,
	interviews *repositories.InterviewRepository,
	transcripts *repositories.TranscriptRepository,
	tokens *livekit.TokenIssuer,
) *PortalHandler {
	return &PortalHandler{
		Candidates: candidates,
		Interviews: interviews,
		Transcript: transcripts,
		Tokens:     tokens,
	}
}

// questionsFor picks the candidate's question list: per-candidate overrides
// win, otherwise the job's defaults apply.
func questionsFor(c *models.Candidate) []string {
	if len(c.CustomQuestions) > 0 {
		return c.CustomQuestions
	}
	return c.Job.DefaultQuestions
}

func (h *PortalHandler) resolveCandidate(w http.ResponseWriter, r *http.Request) *models.Candidate {
	token := chi.URLParam(r, "accessToken")
	candidate, err := h.Candidates.GetCandidateByAccessToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			// Unknown tokens are terminal: the portal tells the candidate to
			// contact the recruiter rather than retry.
			utils.JSON(w, http.StatusNotFound, models.ErrorResponse{
				Code: "invalid_link", Message: "This interview link is not valid. Please contact your recruiter.",
			})
			return nil
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to resolve interview link",
		})
		return nil
	}
	return candidate
}

// Resolve returns what the portal needs to render the lobby: candidate
// name, job context, question count, and the latest interview state.
func (h *PortalHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	candidate := h.resolveCandidate(w, r)
	if candidate == nil {
		return
	}

	payload := map[string]any{
		"candidateName":  candidate.Name,
		"jobTitle":       candidate.Job.Title,
		"jobDescription": candidate.Job.Description,
		"questionCount":  len(questionsFor(candidate)),
		"status":         candidate.Status,
	}
	if interview, err := h.Interviews.LatestByCandidate(candidate.ID); err == nil {
		payload["interviewStatus"] = interview.Status
	}
	utils.JSON(w, http.StatusOK, payload)
}

// Start creates or resumes the candidate's interview record and mints the
// room credential. The session itself begins when the live channel opens.
func (h *PortalHandler) Start(w http.ResponseWriter, r *http.Request) {
	candidate := h.resolveCandidate(w, r)
	if candidate == nil {
		return
	}
	if len(questionsFor(candidate)) == 0 {
		utils.JSON(w, http.StatusConflict, models.ErrorResponse{
			Code: "no_questions", Message: "This interview has no questions configured. Please contact your recruiter.",
		})
		return
	}

	interview, err := h.Interviews.CreateOrResume(candidate.ID)
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "start_failed", Message: "failed to start interview",
		})
		return
	}

	payload := map[string]any{
		"interviewId": interview.ID,
		"roomName":    interview.RoomName,
		"status":      interview.Status,
	}
	if h.Tokens.Configured() {
		token, err := h.Tokens.Mint(interview.RoomName, candidate.Name)
		if err == nil {
			payload["token"] = token
			payload["wsUrl"] = h.Tokens.URL()
		}
	}
	utils.JSON(w, http.StatusOK, payload)
}

// Transcripts returns the candidate's own transcript for the resumption
// screen, so a returning candidate sees where they left off.
func (h *PortalHandler) Transcripts(w http.ResponseWriter, r *http.Request) {
	candidate := h.resolveCandidate(w, r)
	if candidate == nil {
		return
	}
	interview, err := h.Interviews.LatestByCandidate(candidate.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrInterviewNotFound) {
			utils.JSON(w, http.StatusOK, []models.TranscriptEntry{})
			return
		}
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to load interview",
		})
		return
	}
	entries, err := h.Transcript.ListByInterview(interview.ID)
	if err != nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code: "lookup_failed", Message: "failed to load transcripts",
		})
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}
