package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/academyhq/academy-backend/internal/wizard"
)

// WizardHandler drives the booking wizard state machine over HTTP. Each
// client session key maps to one persisted wizard state.
type WizardHandler struct {
	snapshots *wizard.Snapshots
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(snapshots *wizard.Snapshots) *WizardHandler {
	return &WizardHandler{snapshots: snapshots}
}

// Open restores a saved wizard (within the resume window) or starts fresh.
// An externally supplied ?sport= always overrides the restored selection.
func (h *WizardHandler) Open(c *fiber.Ctx) error {
	sessionKey := c.Params("sid")
	initialSport := c.Query("sport")

	state, resumed := h.snapshots.Restore(sessionKey, initialSport)
	if err := h.snapshots.Save(sessionKey, state); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist wizard state",
		})
	}

	return c.JSON(fiber.Map{
		"state":   state,
		"resumed": resumed,
	})
}

// Event applies one wizard event and persists the resulting state.
func (h *WizardHandler) Event(c *fiber.Ctx) error {
	sessionKey := c.Params("sid")

	var req struct {
		Type      string         `json:"type"`
		Sport     string         `json:"sport"`
		Date      *time.Time     `json:"date"`
		Phone     string         `json:"phone"`
		Details   wizard.Details `json:"details"`
		BookingID string         `json:"booking_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	event, err := buildEvent(req.Type, req.Sport, req.Date, req.Phone, req.Details, req.BookingID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	state, _ := h.snapshots.Restore(sessionKey, "")
	next, err := wizard.Apply(state, event)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.snapshots.Save(sessionKey, next); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist wizard state",
		})
	}

	return c.JSON(fiber.Map{"state": next})
}

// Close handles the wizard modal closing; completed flows are cleared
// unless the user's progress is worth resuming.
func (h *WizardHandler) Close(c *fiber.Ctx) error {
	sessionKey := c.Params("sid")

	state, resumed := h.snapshots.Restore(sessionKey, "")
	if !resumed {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.snapshots.Close(sessionKey, state); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to close wizard",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func buildEvent(eventType, sport string, date *time.Time, phone string, details wizard.Details, bookingID string) (interface{}, error) {
	switch eventType {
	case "select_sport":
		return wizard.SelectSport{Sport: sport}, nil
	case "select_date":
		if date == nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "date is required")
		}
		return wizard.SelectDate{Date: *date}, nil
	case "authenticated":
		return wizard.Authenticated{Phone: phone}, nil
	case "submit_details":
		return wizard.SubmitDetails{Details: details}, nil
	case "booking_created":
		return wizard.BookingCreated{BookingID: bookingID}, nil
	case "booking_failed":
		return wizard.BookingFailed{}, nil
	case "next":
		return wizard.Next{}, nil
	case "back":
		return wizard.Back{}, nil
	default:
		return nil, fiber.NewError(fiber.StatusBadRequest, "unknown event type: "+eventType)
	}
}
