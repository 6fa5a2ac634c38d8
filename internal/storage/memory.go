package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/academyhq/academy-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local
// development without a database.
type MemoryStore struct {
	sessions  map[string]*models.OTPSession
	cooldowns map[string]time.Time
	snapshots map[string]*models.WizardSnapshot
	bookings  map[string]*models.TrialBooking

	sessionMu  sync.RWMutex
	cooldownMu sync.RWMutex
	snapshotMu sync.RWMutex
	bookingMu  sync.RWMutex

	bookingCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*models.OTPSession),
		cooldowns: make(map[string]time.Time),
		snapshots: make(map[string]*models.WizardSnapshot),
		bookings:  make(map[string]*models.TrialBooking),
	}
}

// OTP session operations

func (m *MemoryStore) PutOTPSession(session *models.OTPSession) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.UpdatedAt = time.Now()

	// New send for the same phone supersedes the previous session.
	m.sessions[session.PhoneNumber] = session
	return nil
}

func (m *MemoryStore) GetOTPSession(phone string) (*models.OTPSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	session, exists := m.sessions[phone]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MemoryStore) DeleteOTPSession(phone string) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	delete(m.sessions, phone)
	return nil
}

func (m *MemoryStore) ListExpiredOTPSessions(olderThan time.Time) ([]*models.OTPSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	var expired []*models.OTPSession
	for _, session := range m.sessions {
		if session.CreatedAt.Before(olderThan) {
			copied := *session
			expired = append(expired, &copied)
		}
	}
	return expired, nil
}

// Send cooldown operations

func (m *MemoryStore) GetLastSend(phone string) (time.Time, error) {
	m.cooldownMu.RLock()
	defer m.cooldownMu.RUnlock()

	at, exists := m.cooldowns[phone]
	if !exists {
		return time.Time{}, ErrNotFound
	}
	return at, nil
}

func (m *MemoryStore) SetLastSend(phone string, at time.Time) error {
	m.cooldownMu.Lock()
	defer m.cooldownMu.Unlock()

	m.cooldowns[phone] = at
	return nil
}

// Wizard snapshot operations

func (m *MemoryStore) PutWizardSnapshot(snap *models.WizardSnapshot) error {
	m.snapshotMu.Lock()
	defer m.snapshotMu.Unlock()

	m.snapshots[snap.SessionKey] = snap
	return nil
}

func (m *MemoryStore) GetWizardSnapshot(sessionKey string) (*models.WizardSnapshot, error) {
	m.snapshotMu.RLock()
	defer m.snapshotMu.RUnlock()

	snap, exists := m.snapshots[sessionKey]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *snap
	return &copied, nil
}

func (m *MemoryStore) DeleteWizardSnapshot(sessionKey string) error {
	m.snapshotMu.Lock()
	defer m.snapshotMu.Unlock()

	delete(m.snapshots, sessionKey)
	return nil
}

func (m *MemoryStore) ListStaleWizardSnapshots(olderThan time.Time) ([]*models.WizardSnapshot, error) {
	m.snapshotMu.RLock()
	defer m.snapshotMu.RUnlock()

	var stale []*models.WizardSnapshot
	for _, snap := range m.snapshots {
		if snap.SavedAt.Before(olderThan) {
			copied := *snap
			stale = append(stale, &copied)
		}
	}
	return stale, nil
}

// Trial booking operations

func (m *MemoryStore) CreateTrialBooking(booking *models.TrialBooking) (*models.TrialBooking, error) {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if booking.BookingID == "" {
		m.bookingCounter++
		booking.BookingID = fmt.Sprintf("TRB%05d", m.bookingCounter)
	}
	if booking.Status == "" {
		booking.Status = models.TrialStatusPending
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	m.bookings[booking.BookingID] = booking
	return booking, nil
}

func (m *MemoryStore) GetTrialBooking(bookingID string) (*models.TrialBooking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[bookingID]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *MemoryStore) GetTrialBookingsByPhone(phone string) ([]*models.TrialBooking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var results []*models.TrialBooking
	for _, booking := range m.bookings {
		if booking.PhoneNumber == phone {
			copied := *booking
			results = append(results, &copied)
		}
	}
	return results, nil
}

func (m *MemoryStore) UpdateTrialBooking(booking *models.TrialBooking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	if _, exists := m.bookings[booking.BookingID]; !exists {
		return ErrNotFound
	}
	booking.UpdatedAt = time.Now()
	m.bookings[booking.BookingID] = booking
	return nil
}
