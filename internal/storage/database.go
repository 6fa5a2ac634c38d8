package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/utils"
)

// DatabaseStore implements Store on top of PostgreSQL via GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// OTP session operations

func (d *DatabaseStore) PutOTPSession(session *models.OTPSession) error {
	var existing models.OTPSession
	err := d.db.Where("phone_number = ?", session.PhoneNumber).First(&existing).Error
	if err == nil {
		// Overwrite the superseded session in place. CreatedAt is stamped
		// only when unset: a new send carries a zero timestamp and starts a
		// fresh validity window, while attempt-increment writes keep the
		// original one.
		session.ID = existing.ID
		if session.CreatedAt.IsZero() {
			session.CreatedAt = time.Now()
		}
		return d.db.Save(session).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return d.db.Create(session).Error
}

func (d *DatabaseStore) GetOTPSession(phone string) (*models.OTPSession, error) {
	var session models.OTPSession
	err := d.db.Where("phone_number = ?", phone).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *DatabaseStore) DeleteOTPSession(phone string) error {
	return d.db.Unscoped().Where("phone_number = ?", phone).Delete(&models.OTPSession{}).Error
}

func (d *DatabaseStore) ListExpiredOTPSessions(olderThan time.Time) ([]*models.OTPSession, error) {
	var sessions []*models.OTPSession
	err := d.db.Where("created_at < ?", olderThan).Find(&sessions).Error
	return sessions, err
}

// Send cooldown operations

func (d *DatabaseStore) GetLastSend(phone string) (time.Time, error) {
	var cooldown models.SendCooldown
	err := d.db.Where("phone_number = ?", phone).First(&cooldown).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return cooldown.LastSentAt, nil
}

func (d *DatabaseStore) SetLastSend(phone string, at time.Time) error {
	var cooldown models.SendCooldown
	err := d.db.Where("phone_number = ?", phone).First(&cooldown).Error
	if err == nil {
		cooldown.LastSentAt = at
		return d.db.Save(&cooldown).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return d.db.Create(&models.SendCooldown{PhoneNumber: phone, LastSentAt: at}).Error
}

// Wizard snapshot operations

func (d *DatabaseStore) PutWizardSnapshot(snap *models.WizardSnapshot) error {
	var existing models.WizardSnapshot
	err := d.db.Where("session_key = ?", snap.SessionKey).First(&existing).Error
	if err == nil {
		snap.ID = existing.ID
		return d.db.Save(snap).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return d.db.Create(snap).Error
}

func (d *DatabaseStore) GetWizardSnapshot(sessionKey string) (*models.WizardSnapshot, error) {
	var snap models.WizardSnapshot
	err := d.db.Where("session_key = ?", sessionKey).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (d *DatabaseStore) DeleteWizardSnapshot(sessionKey string) error {
	return d.db.Unscoped().Where("session_key = ?", sessionKey).Delete(&models.WizardSnapshot{}).Error
}

func (d *DatabaseStore) ListStaleWizardSnapshots(olderThan time.Time) ([]*models.WizardSnapshot, error) {
	var snaps []*models.WizardSnapshot
	err := d.db.Where("saved_at < ?", olderThan).Find(&snaps).Error
	return snaps, err
}

// Trial booking operations

func (d *DatabaseStore) CreateTrialBooking(booking *models.TrialBooking) (*models.TrialBooking, error) {
	if booking.BookingID == "" {
		booking.BookingID = utils.NewBookingRef()
	}
	if booking.Status == "" {
		booking.Status = models.TrialStatusPending
	}
	if err := d.db.Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (d *DatabaseStore) GetTrialBooking(bookingID string) (*models.TrialBooking, error) {
	var booking models.TrialBooking
	err := d.db.Where("booking_id = ?", bookingID).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DatabaseStore) GetTrialBookingsByPhone(phone string) ([]*models.TrialBooking, error) {
	var bookings []*models.TrialBooking
	err := d.db.Where("phone_number = ?", phone).Order("created_at desc").Find(&bookings).Error
	return bookings, err
}

func (d *DatabaseStore) UpdateTrialBooking(booking *models.TrialBooking) error {
	return d.db.Save(booking).Error
}
