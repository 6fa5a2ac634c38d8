package models

import (
	"time"

	"gorm.io/gorm"
)

// OTPSession is one outstanding phone-verification challenge. At most one
// active session exists per phone number; a new send overwrites the old row.
type OTPSession struct {
	gorm.Model
	PhoneNumber string `gorm:"uniqueIndex;not null"` // normalized E.164
	Code        string `gorm:"not null"`
	Provider    string `gorm:"not null"` // adapter that delivered the code
	SessionID   string `gorm:"index"`
	Attempts    int    `gorm:"default:0"`
	Confirmed   bool   `gorm:"default:false"`
}

// SendCooldown records the last successful OTP send per phone number.
// A second send within the cooldown window is rejected before any
// provider is tried.
type SendCooldown struct {
	gorm.Model
	PhoneNumber string    `gorm:"uniqueIndex;not null"`
	LastSentAt  time.Time `gorm:"not null"`
}
