package jobs

import (
	"log"
	"time"

	"github.com/academyhq/academy-backend/internal/storage"
)

// CleanupJob periodically drops OTP sessions and wizard snapshots that
// outlived their windows. Expiry is still enforced lazily at confirm and
// restore time; this pass only keeps the store from accumulating garbage.
type CleanupJob struct {
	store          storage.Store
	interval       time.Duration
	sessionMaxAge  time.Duration
	snapshotMaxAge time.Duration
	stop           chan struct{}
	isRunning      bool
}

// NewCleanupJob creates the cleanup scheduler.
func NewCleanupJob(store storage.Store, interval, sessionMaxAge, snapshotMaxAge time.Duration) *CleanupJob {
	return &CleanupJob{
		store:          store,
		interval:       interval,
		sessionMaxAge:  sessionMaxAge,
		snapshotMaxAge: snapshotMaxAge,
		stop:           make(chan struct{}),
	}
}

// Start begins the periodic cleanup pass
func (j *CleanupJob) Start() {
	if j.isRunning {
		log.Println("Cleanup job already running")
		return
	}
	j.isRunning = true
	log.Println("Starting storage cleanup job...")

	go j.run()
}

// Stop halts the cleanup pass
func (j *CleanupJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping storage cleanup job...")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stop:
			return
		}
	}
}

// RunOnce executes a single cleanup pass.
func (j *CleanupJob) RunOnce() {
	now := time.Now()

	sessions, err := j.store.ListExpiredOTPSessions(now.Add(-j.sessionMaxAge))
	if err != nil {
		log.Printf("Cleanup: failed to list expired OTP sessions: %v", err)
	} else {
		for _, s := range sessions {
			if err := j.store.DeleteOTPSession(s.PhoneNumber); err != nil {
				log.Printf("Cleanup: failed to delete OTP session for %s: %v", s.PhoneNumber, err)
			}
		}
		if len(sessions) > 0 {
			log.Printf("Cleanup: removed %d expired OTP sessions", len(sessions))
		}
	}

	snaps, err := j.store.ListStaleWizardSnapshots(now.Add(-j.snapshotMaxAge))
	if err != nil {
		log.Printf("Cleanup: failed to list stale wizard snapshots: %v", err)
		return
	}
	for _, snap := range snaps {
		if err := j.store.DeleteWizardSnapshot(snap.SessionKey); err != nil {
			log.Printf("Cleanup: failed to delete wizard snapshot %s: %v", snap.SessionKey, err)
		}
	}
	if len(snaps) > 0 {
		log.Printf("Cleanup: removed %d stale wizard snapshots", len(snaps))
	}
}
