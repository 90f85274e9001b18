package models

import (
	"gorm.io/gorm"
)

// Candidate lifecycle statuses. Transitions are monotonic except for manual
// HR overrides through the status update endpoint.
const (
	CandidateStatusCreated    = "created"
	CandidateStatusLinkSent   = "link_sent"
	CandidateStatusInProgress = "in_progress"
	CandidateStatusCompleted  = "completed"
	CandidateStatusReviewed   = "reviewed"
)

// Candidate identifies one interviewee for one job. The access token is the
// single-use credential embedded in the interview link and never changes
// after creation.
type Candidate struct {
	gorm.Model
	Name            string       `gorm:"not null" json:"name"`
	Email           string       `gorm:"not null" json:"email"`
	JobID           uint         `gorm:"not null;index" json:"jobId"`
	AccessToken     string       `gorm:"uniqueIndex;not null" json:"accessToken"`
	CustomQuestions QuestionList `gorm:"type:text" json:"customQuestions"`
	Status          string       `gorm:"default:created;index" json:"status"`
	HRNotes         string       `gorm:"type:text" json:"hrNotes"`

	Job        Job         `json:"-"`
	Interviews []Interview `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ValidCandidateStatus reports whether s is one of the known lifecycle states.
func ValidCandidateStatus(s string) bool {
	switch s {
	case CandidateStatusCreated, CandidateStatusLinkSent, CandidateStatusInProgress,
		CandidateStatusCompleted, CandidateStatusReviewed:
		return true
	}
	return false
}
