package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/storage"
)

const testPhone = "+919876543210"

func newTestVerifier(t *testing.T) (*Verifier, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewVerifier(store, 5*time.Minute, 3, "test-secret"), store
}

func TestVerifier_ConfirmSuccess(t *testing.T) {
	v, _ := newTestVerifier(t)

	handle, err := v.CreateSession(testPhone, "482916", ProviderWhatsApp)
	require.NoError(t, err)
	assert.NotEmpty(t, handle.SessionID)
	assert.Equal(t, ProviderWhatsApp, handle.Provider)

	result, err := handle.Confirm(context.Background(), "482916")
	require.NoError(t, err)
	assert.Equal(t, testPhone, result.User.Phone)
	assert.Equal(t, ProviderWhatsApp, result.User.Provider)
	assert.NotEmpty(t, result.Token)

	// The issued token must parse back to the same user.
	user, err := v.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, testPhone, user.Phone)
}

func TestVerifier_ConfirmTrimsInput(t *testing.T) {
	v, _ := newTestVerifier(t)

	handle, err := v.CreateSession(testPhone, "482916", ProviderMSG91)
	require.NoError(t, err)

	_, err = handle.Confirm(context.Background(), "  482916  ")
	require.NoError(t, err)
}

func TestVerifier_SecondConfirmAfterSuccess(t *testing.T) {
	v, _ := newTestVerifier(t)

	handle, err := v.CreateSession(testPhone, "482916", ProviderWhatsApp)
	require.NoError(t, err)

	_, err = handle.Confirm(context.Background(), "482916")
	require.NoError(t, err)

	// The confirmed session is still in the store during the deletion
	// delay; it must not verify a second time.
	_, err = handle.Confirm(context.Background(), "482916")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerifier_ConfirmNoSession(t *testing.T) {
	v, _ := newTestVerifier(t)

	_, err := v.Confirm(context.Background(), testPhone, "123456")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerifier_ConfirmExpired(t *testing.T) {
	v, store := newTestVerifier(t)

	session := &models.OTPSession{
		PhoneNumber: testPhone,
		Code:        "482916",
		Provider:    ProviderWhatsApp,
		SessionID:   "s1",
	}
	session.CreatedAt = time.Now().Add(-6 * time.Minute)
	require.NoError(t, store.PutOTPSession(session))

	_, err := v.Confirm(context.Background(), testPhone, "482916")
	assert.ErrorIs(t, err, ErrExpired)

	// Expiry deletes the session.
	_, err = store.GetOTPSession(testPhone)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVerifier_InvalidCodeKeepsSession(t *testing.T) {
	v, store := newTestVerifier(t)

	_, err := v.CreateSession(testPhone, "482916", ProviderWhatsApp)
	require.NoError(t, err)

	_, err = v.Confirm(context.Background(), testPhone, "000001")
	assert.ErrorIs(t, err, ErrInvalidCode)

	session, err := store.GetOTPSession(testPhone)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Attempts)

	// Remaining attempts are still usable.
	_, err = v.Confirm(context.Background(), testPhone, "482916")
	require.NoError(t, err)
}

func TestVerifier_FourthAttemptAlwaysFails(t *testing.T) {
	v, _ := newTestVerifier(t)

	_, err := v.CreateSession(testPhone, "482916", ProviderWhatsApp)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = v.Confirm(context.Background(), testPhone, "999999")
		assert.ErrorIs(t, err, ErrInvalidCode)
	}

	// Fourth attempt fails even with the correct code.
	_, err = v.Confirm(context.Background(), testPhone, "482916")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// And the session is gone, so a fifth attempt reports no session.
	_, err = v.Confirm(context.Background(), testPhone, "482916")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerifier_DevCodesOnlyForLocalSessions(t *testing.T) {
	v, _ := newTestVerifier(t)
	v.SetDevCodes([]string{"123456"})

	_, err := v.CreateSession(testPhone, "482916", ProviderWhatsApp)
	require.NoError(t, err)

	// Allow-list codes are not accepted for network-provider sessions.
	_, err = v.Confirm(context.Background(), testPhone, "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)

	other := "+919876500000"
	_, err = v.CreateSession(other, "482916", ProviderLocal)
	require.NoError(t, err)

	result, err := v.Confirm(context.Background(), other, "123456")
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, result.User.Provider)
}

func TestVerifier_NewSendSupersedesSession(t *testing.T) {
	v, store := newTestVerifier(t)

	_, err := v.CreateSession(testPhone, "111111", ProviderWhatsApp)
	require.NoError(t, err)
	_, err = v.CreateSession(testPhone, "222222", ProviderMSG91)
	require.NoError(t, err)

	session, err := store.GetOTPSession(testPhone)
	require.NoError(t, err)
	assert.Equal(t, "222222", session.Code)
	assert.Equal(t, ProviderMSG91, session.Provider)
	assert.Equal(t, 0, session.Attempts)

	// The old code no longer verifies.
	_, err = v.Confirm(context.Background(), testPhone, "111111")
	assert.ErrorIs(t, err, ErrInvalidCode)
}
