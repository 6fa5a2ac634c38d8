package otp

import "errors"

// Verification and delivery failures surface as one of these sentinels so
// handlers can match with errors.Is instead of string comparison. Provider
// specific failures are logged and swallowed inside the fallback chain; only
// these categories ever reach a caller.
var (
	ErrSessionNotFound    = errors.New("no verification session for this number")
	ErrExpired            = errors.New("verification code expired")
	ErrTooManyAttempts    = errors.New("too many verification attempts")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrRateLimited        = errors.New("please wait before requesting another code")
	ErrProvidersExhausted = errors.New("all delivery providers failed")
)
