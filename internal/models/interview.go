package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	InterviewStatusPending    = "pending"
	InterviewStatusInProgress = "in_progress"
	InterviewStatusCompleted  = "completed"
	InterviewStatusFailed     = "failed"
)

// Speaker tags a transcript entry. Closed two-value set.
type Speaker string

const (
	SpeakerAI        Speaker = "ai"
	SpeakerCandidate Speaker = "candidate"
)

// Interview is one attempt by a candidate at their assigned questions. At
// most one interview per candidate is in_progress at a time; re-entry
// resumes the existing record.
type Interview struct {
	gorm.Model
	CandidateID uint       `gorm:"not null;index" json:"candidateId"`
	Status      string     `gorm:"default:pending;index" json:"status"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	RoomName    string     `json:"roomName"`
	AISummary   string     `gorm:"type:text" json:"aiSummary"`
	AIScore     *int       `json:"aiScore"`

	Transcripts []TranscriptEntry `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TranscriptEntry is one utterance within an interview. Append-only;
// ordering is by creation and is significant.
type TranscriptEntry struct {
	gorm.Model
	InterviewID   uint    `gorm:"not null;index" json:"interviewId"`
	Speaker       Speaker `gorm:"not null" json:"speaker"`
	Message       string  `gorm:"type:text;not null" json:"message"`
	QuestionIndex *int    `json:"questionIndex"`
}
