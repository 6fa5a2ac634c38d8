package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/otp"
	"github.com/academyhq/academy-backend/internal/storage"
	"github.com/academyhq/academy-backend/internal/wizard"
)

// TrialHandler handles trial-booking record requests
type TrialHandler struct {
	store              storage.Store
	defaultCountryCode string
}

// NewTrialHandler creates a new trial booking handler
func NewTrialHandler(store storage.Store, defaultCountryCode string) *TrialHandler {
	return &TrialHandler{store: store, defaultCountryCode: defaultCountryCode}
}

// Create persists a trial booking from the wizard's details step
func (h *TrialHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Sport     string `json:"sport"`
		TrialDate string `json:"trial_date"` // YYYY-MM-DD
		Phone     string `json:"phone"`
		Name      string `json:"name"`
		Age       int    `json:"age"`
		Email     string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Sport == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sport is required",
		})
	}
	trialDate, err := time.Parse("2006-01-02", req.TrialDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Trial date must be YYYY-MM-DD",
		})
	}
	if fieldErrors := wizard.ValidateDetails(wizard.Details{Name: req.Name, Age: req.Age, Email: req.Email}); fieldErrors != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": fieldErrors,
		})
	}
	phone, err := otp.NormalizePhone(req.Phone, h.defaultCountryCode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	booking, err := h.store.CreateTrialBooking(&models.TrialBooking{
		Sport:       req.Sport,
		TrialDate:   trialDate,
		PhoneNumber: phone,
		Name:        req.Name,
		Age:         req.Age,
		Email:       req.Email,
		Status:      models.TrialStatusConfirmed,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create trial booking",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Trial booked successfully",
		"booking": booking,
	})
}

// Get retrieves a trial booking by reference
func (h *TrialHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Booking ID is required",
		})
	}

	booking, err := h.store.GetTrialBooking(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Booking not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch booking",
		})
	}

	return c.JSON(fiber.Map{"booking": booking})
}

// ListByPhone returns the bookings made from one phone number
func (h *TrialHandler) ListByPhone(c *fiber.Ctx) error {
	raw := c.Query("phone")
	if raw == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone query parameter is required",
		})
	}
	phone, err := otp.NormalizePhone(raw, h.defaultCountryCode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	bookings, err := h.store.GetTrialBookingsByPhone(phone)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch bookings",
		})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}
