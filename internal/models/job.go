package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// QuestionList is an ordered set of interview question texts stored as a
// JSON text column, so sqlite and postgres behave identically.
type QuestionList []string

func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		q = QuestionList{}
	}
	b, err := json.Marshal(q)
	return string(b), err
}

func (q *QuestionList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*q = nil
		return nil
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	default:
		return errors.New("unsupported source type for QuestionList")
	}
}

// Job is an HR-created position with a default question list.
type Job struct {
	gorm.Model
	Title            string       `gorm:"not null" json:"title"`
	Description      string       `gorm:"type:text" json:"description"`
	DefaultQuestions QuestionList `gorm:"type:text" json:"defaultQuestions"`
	Status           string       `gorm:"default:active" json:"status"`

	Candidates []Candidate `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
