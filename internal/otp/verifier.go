package otp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/storage"
)

// User is the synthetic identity attached to a verified phone number.
type User struct {
	ID       string `json:"id"`
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

// AuthResult is returned by a successful Confirm.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Handle captures one outstanding verification challenge. Callers never
// need to know whether the challenge lives in the local session store or
// on the identity platform's side.
type Handle struct {
	Phone     string
	Provider  string
	SessionID string

	confirm func(ctx context.Context, code string) (*AuthResult, error)
}

// Confirm checks the user-entered code against this handle's challenge.
func (h *Handle) Confirm(ctx context.Context, code string) (*AuthResult, error) {
	return h.confirm(ctx, code)
}

// NewHandle builds a handle for providers that keep the challenge on their
// own side rather than in the session store.
func NewHandle(phone, provider, sessionID string, confirm func(ctx context.Context, code string) (*AuthResult, error)) *Handle {
	return &Handle{
		Phone:     phone,
		Provider:  provider,
		SessionID: sessionID,
		confirm:   confirm,
	}
}

// Verifier owns session-backed verification: session creation, the confirm
// state machine, and identity-token issuance.
type Verifier struct {
	store       storage.Store
	ttl         time.Duration
	maxAttempts int
	jwtSecret   []byte
	deleteDelay time.Duration
	devCodes    []string // allow-list honored only for local-provider sessions
}

// NewVerifier creates a verifier over the given store.
func NewVerifier(store storage.Store, ttl time.Duration, maxAttempts int, jwtSecret string) *Verifier {
	return &Verifier{
		store:       store,
		ttl:         ttl,
		maxAttempts: maxAttempts,
		jwtSecret:   []byte(jwtSecret),
		deleteDelay: 2 * time.Second,
	}
}

// SetDevCodes installs the deterministic allow-list accepted for sessions
// delivered by the local provider.
func (v *Verifier) SetDevCodes(codes []string) {
	v.devCodes = codes
}

// CreateSession persists a new challenge for the phone, superseding any
// previous one, and returns a handle bound to it.
func (v *Verifier) CreateSession(phone, code, provider string) (*Handle, error) {
	session := &models.OTPSession{
		PhoneNumber: phone,
		Code:        code,
		Provider:    provider,
		SessionID:   uuid.New().String(),
	}
	if err := v.store.PutOTPSession(session); err != nil {
		return nil, fmt.Errorf("failed to persist OTP session: %w", err)
	}

	return &Handle{
		Phone:     phone,
		Provider:  provider,
		SessionID: session.SessionID,
		confirm: func(ctx context.Context, input string) (*AuthResult, error) {
			return v.Confirm(ctx, phone, input)
		},
	}, nil
}

// HandleFor rebuilds a handle for an existing session, e.g. when the
// confirm request arrives on a different HTTP request than the send.
func (v *Verifier) HandleFor(phone string) (*Handle, error) {
	session, err := v.store.GetOTPSession(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &Handle{
		Phone:     phone,
		Provider:  session.Provider,
		SessionID: session.SessionID,
		confirm: func(ctx context.Context, input string) (*AuthResult, error) {
			return v.Confirm(ctx, phone, input)
		},
	}, nil
}

// Confirm runs the verification state machine for the phone's session.
// Checks happen in a fixed order: missing session, expiry, attempt budget,
// then the code comparison itself. Expiry and attempt exhaustion delete the
// session; a plain mismatch keeps it so remaining attempts can be used.
func (v *Verifier) Confirm(_ context.Context, phone, code string) (*AuthResult, error) {
	session, err := v.store.GetOTPSession(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// An already-confirmed session must not re-succeed while it waits for
	// its delayed deletion.
	if session.Confirmed {
		_ = v.store.DeleteOTPSession(phone)
		return nil, ErrSessionNotFound
	}

	if time.Since(session.CreatedAt) > v.ttl {
		_ = v.store.DeleteOTPSession(phone)
		return nil, ErrExpired
	}

	if session.Attempts >= v.maxAttempts {
		_ = v.store.DeleteOTPSession(phone)
		return nil, ErrTooManyAttempts
	}

	session.Attempts++
	if err := v.store.PutOTPSession(session); err != nil {
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	input := strings.TrimSpace(code)
	if input != session.Code && !v.isDevCode(session.Provider, input) {
		return nil, ErrInvalidCode
	}

	session.Confirmed = true
	if err := v.store.PutOTPSession(session); err != nil {
		return nil, fmt.Errorf("failed to mark session confirmed: %w", err)
	}

	// Keep the confirmed row around briefly so a stray duplicate request
	// gets a clean "not found" rather than a dangling session.
	time.AfterFunc(v.deleteDelay, func() {
		if err := v.store.DeleteOTPSession(phone); err != nil {
			log.Printf("Failed to delete confirmed OTP session for %s: %v", phone, err)
		}
	})

	user := User{
		ID:       "usr_" + strings.TrimPrefix(phone, "+"),
		Phone:    phone,
		Provider: session.Provider,
	}
	token, err := v.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue identity token: %w", err)
	}

	log.Printf("Phone %s verified via %s", phone, session.Provider)
	return &AuthResult{User: user, Token: token}, nil
}

func (v *Verifier) isDevCode(provider, input string) bool {
	if provider != ProviderLocal {
		return false
	}
	for _, c := range v.devCodes {
		if input == c {
			return true
		}
	}
	return false
}

// issueToken signs a short-lived identity token for the verified user.
func (v *Verifier) issueToken(user User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"phone":    user.Phone,
		"provider": user.Provider,
		"iat":      now.Unix(),
		"exp":      now.Add(24 * time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.jwtSecret)
}

// ParseToken validates a token issued by this verifier and returns its user.
func (v *Verifier) ParseToken(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	user := &User{}
	user.ID, _ = claims["sub"].(string)
	user.Phone, _ = claims["phone"].(string)
	user.Provider, _ = claims["provider"].(string)
	return user, nil
}
