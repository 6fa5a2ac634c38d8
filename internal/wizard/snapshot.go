package wizard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/storage"
)

// Snapshots persists wizard state so a reload can resume the flow within a
// bounded window.
type Snapshots struct {
	store  storage.Store
	maxAge time.Duration
}

// NewSnapshots creates a snapshot manager with the given resume window.
func NewSnapshots(store storage.Store, maxAge time.Duration) *Snapshots {
	return &Snapshots{store: store, maxAge: maxAge}
}

// Save serializes the state under the client's session key, stamped now.
func (s *Snapshots) Save(sessionKey string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.store.PutWizardSnapshot(&models.WizardSnapshot{
		SessionKey: sessionKey,
		State:      string(raw),
		SavedAt:    time.Now(),
	})
}

// Restore returns the saved state if it is younger than the resume window,
// otherwise a fresh state. An externally supplied sport always overrides
// the restored selection. The second return reports whether a snapshot was
// adopted.
func (s *Snapshots) Restore(sessionKey, initialSport string) (State, bool) {
	snap, err := s.store.GetWizardSnapshot(sessionKey)
	if err != nil {
		return NewState(initialSport), false
	}

	if time.Since(snap.SavedAt) > s.maxAge {
		_ = s.store.DeleteWizardSnapshot(sessionKey)
		return NewState(initialSport), false
	}

	var st State
	if err := json.Unmarshal([]byte(snap.State), &st); err != nil {
		log.Printf("Discarding unreadable wizard snapshot %s: %v", sessionKey, err)
		_ = s.store.DeleteWizardSnapshot(sessionKey)
		return NewState(initialSport), false
	}

	if initialSport != "" {
		st.SelectedSport = initialSport
	}
	return st, true
}

// Close is called when the wizard modal closes. State that reached the
// terminal step is cleared unless the user made meaningful progress worth
// resuming, in which case it stays for the remainder of the resume window.
func (s *Snapshots) Close(sessionKey string, st State) error {
	if st.CurrentStep == StepConfirmation && !MeaningfulProgress(st) {
		return s.store.DeleteWizardSnapshot(sessionKey)
	}
	return s.Save(sessionKey, st)
}

// MeaningfulProgress reports whether the user got far enough that the flow
// is worth resuming after a close.
func MeaningfulProgress(st State) bool {
	return st.IsAuthenticated || st.SelectedDate != nil
}
