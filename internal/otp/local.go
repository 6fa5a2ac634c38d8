package otp

import (
	"context"
	"log"
)

// LocalProvider is the deterministic offline adapter. It contacts nothing:
// the generated code is logged for the developer, and the verifier
// additionally accepts the configured allow-list of dev codes for sessions
// delivered this way. Never part of the silent fallback order; the chain
// uses it only when explicitly forced or when no real provider has
// credentials.
type LocalProvider struct{}

// NewLocalProvider creates the offline development adapter.
func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (l *LocalProvider) Name() string { return ProviderLocal }

func (l *LocalProvider) Enabled() bool { return true }

func (l *LocalProvider) Send(_ context.Context, phone, code string) error {
	log.Printf("DEV OTP for %s: %s", phone, code)
	return nil
}
