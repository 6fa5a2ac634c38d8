package otp

import (
	"context"
	"fmt"
	"log"

	"github.com/academyhq/academy-backend/internal/utils"
)

// SendOptions tweak a single send call.
type SendOptions struct {
	// ChallengeToken is the bot-challenge proof required by the identity
	// platform adapter.
	ChallengeToken string
	// ForceLocal routes the send to the deterministic local adapter,
	// bypassing every network provider.
	ForceLocal bool
}

// Sender is the provider fallback chain. Adapters are tried sequentially in
// fixed priority order; the first success wins and later adapters are never
// contacted. Partial failures are logged and swallowed; only total
// exhaustion surfaces to the caller.
type Sender struct {
	verifier           *Verifier
	cooldown           *Cooldown
	providers          []Provider
	local              *LocalProvider
	defaultCountryCode string
}

// NewSender builds the chain. providers must already be in priority order;
// the local adapter is held separately because it is an explicit override,
// not a silent fallback.
func NewSender(verifier *Verifier, cooldown *Cooldown, providers []Provider, local *LocalProvider, defaultCountryCode string) *Sender {
	return &Sender{
		verifier:           verifier,
		cooldown:           cooldown,
		providers:          providers,
		local:              local,
		defaultCountryCode: defaultCountryCode,
	}
}

// EnabledProviders reports the names of adapters that currently have
// credentials, for health reporting.
func (s *Sender) EnabledProviders() []string {
	var names []string
	for _, p := range s.providers {
		if p.Enabled() {
			names = append(names, p.Name())
		}
	}
	if len(names) == 0 && s.local != nil {
		names = append(names, s.local.Name())
	}
	return names
}

// SendOTP normalizes the phone, enforces the send cooldown, generates one
// code shared by every adapter attempt, and walks the chain. It returns a
// verification handle or an error from the unified taxonomy.
func (s *Sender) SendOTP(ctx context.Context, rawPhone string, opts SendOptions) (*Handle, error) {
	phone, err := NormalizePhone(rawPhone, s.defaultCountryCode)
	if err != nil {
		return nil, err
	}

	if err := s.cooldown.Check(phone); err != nil {
		return nil, err
	}

	// One code for the whole call: the user sees the same digits no matter
	// which channel ends up delivering them.
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	candidates := s.candidates(opts)
	var lastErr error
	for _, p := range candidates {
		if !p.Enabled() {
			continue
		}

		// Handle-returning providers keep the challenge on their side;
		// their native handle is returned unchanged, no local session.
		if hp, ok := p.(HandleProvider); ok {
			handle, err := hp.SendWithHandle(ctx, phone, opts.ChallengeToken)
			if err != nil {
				lastErr = err
				log.Printf("Provider %s failed for %s: %v", p.Name(), phone, err)
				continue
			}
			s.cooldown.Touch(phone)
			return handle, nil
		}

		if err := p.Send(ctx, phone, code); err != nil {
			lastErr = err
			log.Printf("Provider %s failed for %s: %v", p.Name(), phone, err)
			continue
		}

		handle, err := s.verifier.CreateSession(phone, code, p.Name())
		if err != nil {
			return nil, err
		}
		s.cooldown.Touch(phone)
		return handle, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider configured")
	}
	return nil, fmt.Errorf("%w: %v", ErrProvidersExhausted, lastErr)
}

// candidates picks the adapter list for this call. Forcing local, or having
// no configured network provider at all, routes to the deterministic
// adapter alone.
func (s *Sender) candidates(opts SendOptions) []Provider {
	if opts.ForceLocal && s.local != nil {
		return []Provider{s.local}
	}
	for _, p := range s.providers {
		if p.Enabled() {
			return s.providers
		}
	}
	if s.local != nil {
		return []Provider{s.local}
	}
	return nil
}
