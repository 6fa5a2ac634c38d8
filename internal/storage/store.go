package storage

import (
	"errors"
	"time"

	"github.com/academyhq/academy-backend/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// Store defines the interface for storage operations. The OTP and wizard
// layers depend on this abstraction so tests can run against MemoryStore
// while production uses the database-backed implementation.
type Store interface {
	// OTP session operations (keyed by normalized E.164 phone)
	PutOTPSession(session *models.OTPSession) error
	GetOTPSession(phone string) (*models.OTPSession, error)
	DeleteOTPSession(phone string) error
	ListExpiredOTPSessions(olderThan time.Time) ([]*models.OTPSession, error)

	// Send cooldown operations
	GetLastSend(phone string) (time.Time, error)
	SetLastSend(phone string, at time.Time) error

	// Wizard snapshot operations
	PutWizardSnapshot(snap *models.WizardSnapshot) error
	GetWizardSnapshot(sessionKey string) (*models.WizardSnapshot, error)
	DeleteWizardSnapshot(sessionKey string) error
	ListStaleWizardSnapshots(olderThan time.Time) ([]*models.WizardSnapshot, error)

	// Trial booking operations
	CreateTrialBooking(booking *models.TrialBooking) (*models.TrialBooking, error)
	GetTrialBooking(bookingID string) (*models.TrialBooking, error)
	GetTrialBookingsByPhone(phone string) ([]*models.TrialBooking, error)
	UpdateTrialBooking(booking *models.TrialBooking) error
}
