package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/storage"
)

func TestCleanupJob_RunOnce(t *testing.T) {
	store := storage.NewMemoryStore()

	expired := &models.OTPSession{PhoneNumber: "+911111111111", Code: "111111"}
	expired.CreatedAt = time.Now().Add(-15 * time.Minute)
	require.NoError(t, store.PutOTPSession(expired))
	require.NoError(t, store.PutOTPSession(&models.OTPSession{PhoneNumber: "+912222222222", Code: "222222"}))

	require.NoError(t, store.PutWizardSnapshot(&models.WizardSnapshot{
		SessionKey: "stale",
		State:      "{}",
		SavedAt:    time.Now().Add(-45 * time.Minute),
	}))
	require.NoError(t, store.PutWizardSnapshot(&models.WizardSnapshot{
		SessionKey: "fresh",
		State:      "{}",
		SavedAt:    time.Now(),
	}))

	job := NewCleanupJob(store, time.Minute, 10*time.Minute, 30*time.Minute)
	job.RunOnce()

	_, err := store.GetOTPSession("+911111111111")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetOTPSession("+912222222222")
	assert.NoError(t, err)

	_, err = store.GetWizardSnapshot("stale")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetWizardSnapshot("fresh")
	assert.NoError(t, err)
}

func TestCleanupJob_RunOnceEmptyStore(t *testing.T) {
	job := NewCleanupJob(storage.NewMemoryStore(), time.Minute, 10*time.Minute, 30*time.Minute)
	assert.NotPanics(t, job.RunOnce)
}
