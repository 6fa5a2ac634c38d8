package models

import (
	"time"

	"gorm.io/gorm"
)

// WizardSnapshot persists an in-progress booking wizard so a reload can
// resume where the user left off. State is the JSON-serialized wizard
// state; SavedAt drives the resume window.
type WizardSnapshot struct {
	gorm.Model
	SessionKey string    `json:"session_key" gorm:"uniqueIndex;not null"`
	State      string    `json:"state" gorm:"type:text"`
	SavedAt    time.Time `json:"saved_at" gorm:"not null"`
}
