package models

import (
	"gorm.io/gorm"
)

// User represents an HR account able to manage jobs and candidates.
type User struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:hr_manager" json:"role"`
}
