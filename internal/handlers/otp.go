package handlers

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/academyhq/academy-backend/internal/otp"
)

// handleRetention bounds how long an identity-platform handle is kept
// waiting for its verify request. The platform's own challenge window is
// shorter, so anything older is dead weight.
const handleRetention = 10 * time.Minute

type handleEntry struct {
	handle   *otp.Handle
	storedAt time.Time
}

// OTPHandler exposes the send/verify endpoints over the provider chain.
// Identity-platform handles only exist in memory, so those are kept here
// between the send and verify requests; session-backed handles are always
// rebuilt from the store instead.
type OTPHandler struct {
	sender             *otp.Sender
	verifier           *otp.Verifier
	defaultCountryCode string

	mu      sync.Mutex
	handles map[string]handleEntry
}

// NewOTPHandler creates a new OTP handler
func NewOTPHandler(sender *otp.Sender, verifier *otp.Verifier, defaultCountryCode string) *OTPHandler {
	return &OTPHandler{
		sender:             sender,
		verifier:           verifier,
		defaultCountryCode: defaultCountryCode,
		handles:            make(map[string]handleEntry),
	}
}

// Send delivers a verification code to the given phone
func (h *OTPHandler) Send(c *fiber.Ctx) error {
	var req struct {
		Phone          string `json:"phone"`
		ChallengeToken string `json:"challenge_token"`
		ForceLocal     bool   `json:"force_local"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number is required",
		})
	}

	handle, err := h.sender.SendOTP(c.Context(), req.Phone, otp.SendOptions{
		ChallengeToken: req.ChallengeToken,
		ForceLocal:     req.ForceLocal,
	})
	if err != nil {
		switch {
		case errors.Is(err, otp.ErrRateLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, otp.ErrProvidersExhausted):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "Could not deliver a verification code, please try again",
			})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	if handle.Provider == otp.ProviderIdentity {
		h.mu.Lock()
		h.sweepLocked(time.Now())
		h.handles[handle.Phone] = handleEntry{handle: handle, storedAt: time.Now()}
		h.mu.Unlock()
	}

	return c.JSON(fiber.Map{
		"session_id": handle.SessionID,
		"provider":   handle.Provider,
		"phone":      handle.Phone,
	})
}

// Verify confirms a user-entered code against the outstanding challenge
func (h *OTPHandler) Verify(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Phone == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number and code are required",
		})
	}

	phone, err := otp.NormalizePhone(req.Phone, h.defaultCountryCode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	handle, err := h.handleFor(phone)
	if err != nil {
		return h.verificationError(c, phone, err)
	}

	result, err := handle.Confirm(c.Context(), req.Code)
	if err != nil {
		return h.verificationError(c, phone, err)
	}

	h.evict(phone)

	return c.JSON(fiber.Map{
		"user":  result.User,
		"token": result.Token,
	})
}

func (h *OTPHandler) handleFor(phone string) (*otp.Handle, error) {
	h.mu.Lock()
	entry, ok := h.handles[phone]
	if ok && time.Since(entry.storedAt) > handleRetention {
		delete(h.handles, phone)
		ok = false
	}
	h.mu.Unlock()
	if ok {
		return entry.handle, nil
	}
	return h.verifier.HandleFor(phone)
}

func (h *OTPHandler) evict(phone string) {
	h.mu.Lock()
	delete(h.handles, phone)
	h.mu.Unlock()
}

// sweepLocked drops handles past their retention window. Caller holds mu.
func (h *OTPHandler) sweepLocked(now time.Time) {
	for phone, entry := range h.handles {
		if now.Sub(entry.storedAt) > handleRetention {
			delete(h.handles, phone)
		}
	}
}

func (h *OTPHandler) verificationError(c *fiber.Ctx, phone string, err error) error {
	switch {
	case errors.Is(err, otp.ErrSessionNotFound):
		h.evict(phone)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No verification in progress for this number",
		})
	case errors.Is(err, otp.ErrExpired):
		h.evict(phone)
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"error": "Verification code expired, please request a new one",
		})
	case errors.Is(err, otp.ErrTooManyAttempts):
		h.evict(phone)
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many attempts, please request a new code",
		})
	case errors.Is(err, otp.ErrInvalidCode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid verification code",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Verification failed, please try again",
		})
	}
}
