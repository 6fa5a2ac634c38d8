package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// DeliveryStatus receives delivery-status callbacks from the SMS vendors.
// Statuses are logged for observability; delivery failure still leaves the
// session valid, the user simply requests a resend.
func DeliveryStatus(c *fiber.Ctx) error {
	requestID := c.FormValue("requestId")
	status := c.FormValue("status")
	phone := c.FormValue("mobile")

	if requestID == "" && status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Empty status callback",
		})
	}

	log.Printf("Delivery status callback: request=%s phone=%s status=%s", requestID, phone, status)
	return c.SendStatus(fiber.StatusNoContent)
}
