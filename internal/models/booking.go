package models

import (
	"time"

	"gorm.io/gorm"
)

// Trial booking statuses
const (
	TrialStatusPending   = "pending"
	TrialStatusConfirmed = "confirmed"
	TrialStatusCancelled = "cancelled"
)

// TrialBooking is a confirmed trial-class slot created at the details step
// of the booking wizard.
type TrialBooking struct {
	gorm.Model
	BookingID   string    `json:"booking_id" gorm:"uniqueIndex;not null"` // TRB-prefixed reference
	Sport       string    `json:"sport" gorm:"not null"`
	TrialDate   time.Time `json:"trial_date" gorm:"not null"`
	PhoneNumber string    `json:"phone_number" gorm:"index;not null"` // normalized E.164
	Name        string    `json:"name" gorm:"not null"`
	Age         int       `json:"age"`
	Email       string    `json:"email"`
	Status      string    `json:"status" gorm:"default:pending"`
}
