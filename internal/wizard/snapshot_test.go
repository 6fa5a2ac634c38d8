package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/storage"
)

const testSessionKey = "wiz-session-1"

func TestSnapshots_SaveRestoreRoundtrip(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	date := nextSunday()
	saved := State{
		CurrentStep:     StepDetails,
		SelectedSport:   "football",
		SelectedDate:    &date,
		UserPhone:       "+919876543210",
		IsAuthenticated: true,
	}
	require.NoError(t, snapshots.Save(testSessionKey, saved))

	restored, resumed := snapshots.Restore(testSessionKey, "")
	assert.True(t, resumed)
	assert.Equal(t, StepDetails, restored.CurrentStep)
	assert.Equal(t, "football", restored.SelectedSport)
	require.NotNil(t, restored.SelectedDate)
	assert.True(t, restored.SelectedDate.Equal(date))
	assert.True(t, restored.IsAuthenticated)
}

func TestSnapshots_StaleSnapshotResetsFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	require.NoError(t, store.PutWizardSnapshot(&models.WizardSnapshot{
		SessionKey: testSessionKey,
		State:      `{"current_step":"details","selected_sport":"football"}`,
		SavedAt:    time.Now().Add(-31 * time.Minute),
	}))

	restored, resumed := snapshots.Restore(testSessionKey, "")
	assert.False(t, resumed)
	assert.Equal(t, StepSport, restored.CurrentStep)

	// The stale row is gone.
	_, err := store.GetWizardSnapshot(testSessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshots_CorruptSnapshotDiscarded(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	require.NoError(t, store.PutWizardSnapshot(&models.WizardSnapshot{
		SessionKey: testSessionKey,
		State:      "{not json",
		SavedAt:    time.Now(),
	}))

	restored, resumed := snapshots.Restore(testSessionKey, "tennis")
	assert.False(t, resumed)
	assert.Equal(t, "tennis", restored.SelectedSport)
	assert.Equal(t, StepCalendar, restored.CurrentStep)

	_, err := store.GetWizardSnapshot(testSessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshots_InitialSportOverridesRestoredSelection(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	require.NoError(t, snapshots.Save(testSessionKey, State{
		CurrentStep:   StepCalendar,
		SelectedSport: "football",
	}))

	restored, resumed := snapshots.Restore(testSessionKey, "cricket")
	assert.True(t, resumed)
	assert.Equal(t, "cricket", restored.SelectedSport)
	assert.Equal(t, StepCalendar, restored.CurrentStep)
}

func TestSnapshots_MissingSnapshotStartsFresh(t *testing.T) {
	snapshots := NewSnapshots(storage.NewMemoryStore(), 30*time.Minute)

	restored, resumed := snapshots.Restore("never-seen", "")
	assert.False(t, resumed)
	assert.Equal(t, NewState(""), restored)
}

func TestSnapshots_CloseAtConfirmationWithoutProgressClears(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	st := State{CurrentStep: StepConfirmation, SelectedSport: "football"}
	require.NoError(t, snapshots.Save(testSessionKey, st))
	require.NoError(t, snapshots.Close(testSessionKey, st))

	_, err := store.GetWizardSnapshot(testSessionKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshots_CloseMidFlowKeepsSnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	date := nextSunday()
	st := State{CurrentStep: StepAuth, SelectedSport: "football", SelectedDate: &date}
	require.NoError(t, snapshots.Close(testSessionKey, st))

	restored, resumed := snapshots.Restore(testSessionKey, "")
	assert.True(t, resumed)
	assert.Equal(t, StepAuth, restored.CurrentStep)
}

func TestSnapshots_CloseAtConfirmationWithProgressKeeps(t *testing.T) {
	store := storage.NewMemoryStore()
	snapshots := NewSnapshots(store, 30*time.Minute)

	st := State{
		CurrentStep:     StepConfirmation,
		SelectedSport:   "football",
		IsAuthenticated: true,
	}
	require.NoError(t, snapshots.Close(testSessionKey, st))

	_, resumed := snapshots.Restore(testSessionKey, "")
	assert.True(t, resumed)
}

func TestMeaningfulProgress(t *testing.T) {
	date := nextSunday()
	assert.False(t, MeaningfulProgress(State{SelectedSport: "football"}))
	assert.True(t, MeaningfulProgress(State{SelectedDate: &date}))
	assert.True(t, MeaningfulProgress(State{IsAuthenticated: true}))
}
