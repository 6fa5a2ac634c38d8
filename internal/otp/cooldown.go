package otp

import (
	"errors"
	"fmt"
	"time"

	"github.com/academyhq/academy-backend/internal/storage"
)

// Cooldown rate-limits sends per phone number. A successful send arms the
// cooldown even if the user never completes verification.
type Cooldown struct {
	store  storage.Store
	window time.Duration
}

// NewCooldown creates a cooldown gate with the given window.
func NewCooldown(store storage.Store, window time.Duration) *Cooldown {
	return &Cooldown{store: store, window: window}
}

// Check returns ErrRateLimited when the last send for the phone is still
// inside the window.
func (c *Cooldown) Check(phone string) error {
	last, err := c.store.GetLastSend(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if elapsed := time.Since(last); elapsed < c.window {
		remaining := int((c.window - elapsed).Seconds()) + 1
		return fmt.Errorf("%w: try again in %d seconds", ErrRateLimited, remaining)
	}
	return nil
}

// Touch records a successful send for the phone.
func (c *Cooldown) Touch(phone string) {
	if err := c.store.SetLastSend(phone, time.Now()); err != nil {
		// A lost cooldown only relaxes rate limiting, never blocks a user.
		return
	}
}
