package models

import (
	"strings"
)

// ErrorResponse is the uniform error body returned by every handler.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// TokenRequest asks for a join credential for the interview's room.
type TokenRequest struct {
	RoomName        string `json:"roomName"`
	ParticipantName string `json:"participantName"`
	InterviewID     uint   `json:"interviewId"`
}

func (r *TokenRequest) Validate() error {
	if strings.TrimSpace(r.RoomName) == "" {
		return &ErrorResponse{Code: "missing_room_name", Message: "roomName is required"}
	}
	if strings.TrimSpace(r.ParticipantName) == "" {
		return &ErrorResponse{Code: "missing_participant_name", Message: "participantName is required"}
	}
	if r.InterviewID == 0 {
		return &ErrorResponse{Code: "missing_interview_id", Message: "interviewId is required"}
	}
	return nil
}

// TokenResponse carries the join credential. Callers must not connect
// without both fields populated.
type TokenResponse struct {
	Token string `json:"token"`
	WsURL string `json:"wsUrl"`
}

// SpeakRequest asks the backend to render a question as speech in the room.
type SpeakRequest struct {
	InterviewID uint   `json:"interviewId"`
	Question    string `json:"question"`
	RoomName    string `json:"roomName"`
}

func (r *SpeakRequest) Validate() error {
	if r.InterviewID == 0 {
		return &ErrorResponse{Code: "missing_interview_id", Message: "interviewId is required"}
	}
	if strings.TrimSpace(r.Question) == "" {
		return &ErrorResponse{Code: "missing_question", Message: "question is required"}
	}
	return nil
}

// SpeakResponse reports TTS outcome. Success=false with no AudioURL means
// synthesis is unavailable; the caller falls back to a silent wait rather
// than treating it as an error.
type SpeakResponse struct {
	Success  bool   `json:"success"`
	AudioURL string `json:"audioUrl,omitempty"`
	Message  string `json:"message"`
}

// FollowupRequest asks for a short interviewer reaction to an answer, spoken
// between the candidate's answer and the next question.
type FollowupRequest struct {
	Question        string `json:"question"`
	CandidateAnswer string `json:"candidateAnswer"`
	Context         string `json:"context"`
}

func (r *FollowupRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return &ErrorResponse{Code: "missing_question", Message: "question is required"}
	}
	if strings.TrimSpace(r.CandidateAnswer) == "" {
		return &ErrorResponse{Code: "missing_answer", Message: "candidateAnswer is required"}
	}
	return nil
}

// FollowupResponse carries the generated acknowledgment text.
type FollowupResponse struct {
	Response string `json:"response"`
}

// TranscriptTurn is one conversation turn in a summary request.
type TranscriptTurn struct {
	Speaker Speaker `json:"speaker"`
	Message string  `json:"message"`
}

// SummaryRequest asks for an AI review of a finished interview.
type SummaryRequest struct {
	CandidateName string           `json:"candidateName"`
	JobTitle      string           `json:"jobTitle"`
	InterviewID   uint             `json:"interviewId"`
	Transcripts   []TranscriptTurn `json:"transcripts"`
}

func (r *SummaryRequest) Validate() error {
	if strings.TrimSpace(r.CandidateName) == "" {
		return &ErrorResponse{Code: "missing_candidate_name", Message: "candidateName is required"}
	}
	if len(r.Transcripts) == 0 {
		return &ErrorResponse{Code: "missing_transcripts", Message: "transcripts must not be empty"}
	}
	for _, t := range r.Transcripts {
		if t.Speaker != SpeakerAI && t.Speaker != SpeakerCandidate {
			return &ErrorResponse{Code: "invalid_speaker", Message: "speaker must be ai or candidate"}
		}
	}
	return nil
}

// SummaryResponse is the AI-generated review persisted onto the interview.
type SummaryResponse struct {
	Summary string `json:"summary"`
	Score   int    `json:"score"`
}

// JobRequest creates or updates a job posting.
type JobRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	DefaultQuestions []string `json:"defaultQuestions"`
}

func (r *JobRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return &ErrorResponse{Code: "missing_title", Message: "title is required"}
	}
	return nil
}

// CandidateRequest creates a candidate for a job. Empty CustomQuestions
// inherit the job's default question list.
type CandidateRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	JobID           uint     `json:"jobId"`
	CustomQuestions []string `json:"customQuestions"`
}

func (r *CandidateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ErrorResponse{Code: "missing_name", Message: "name is required"}
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return &ErrorResponse{Code: "invalid_email", Message: "a valid email is required"}
	}
	if r.JobID == 0 {
		return &ErrorResponse{Code: "missing_job_id", Message: "jobId is required"}
	}
	return nil
}

// StatusUpdateRequest is a manual HR override of a candidate's status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

func (r *StatusUpdateRequest) Validate() error {
	if !ValidCandidateStatus(r.Status) {
		return &ErrorResponse{Code: "invalid_status", Message: "status must be one of created, link_sent, in_progress, completed, reviewed"}
	}
	return nil
}

// NotesRequest updates the private reviewer notes on a candidate.
type NotesRequest struct {
	Notes string `json:"notes"`
}

func (r *NotesRequest) Validate() error { return nil }

// RegisterRequest creates an HR user.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		return &ErrorResponse{Code: "invalid_email", Message: "a valid email is required"}
	}
	if len(r.Password) < 6 {
		return &ErrorResponse{Code: "weak_password", Message: "password must be at least 6 characters"}
	}
	return nil
}

// LoginRequest authenticates an HR user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return &ErrorResponse{Code: "missing_credentials", Message: "email and password are required"}
	}
	return nil
}
