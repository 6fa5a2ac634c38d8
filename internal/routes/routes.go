package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/academyhq/academy-backend/internal/config"
	"github.com/academyhq/academy-backend/internal/handlers"
	"github.com/academyhq/academy-backend/internal/middleware"
	"github.com/academyhq/academy-backend/internal/otp"
	"github.com/academyhq/academy-backend/internal/storage"
	"github.com/academyhq/academy-backend/internal/wizard"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg config.Config, store storage.Store, sender *otp.Sender, verifier *otp.Verifier, snapshots *wizard.Snapshots) {
	otpHandler := handlers.NewOTPHandler(sender, verifier, cfg.DefaultCountryCode)
	wizardHandler := handlers.NewWizardHandler(snapshots)
	trialHandler := handlers.NewTrialHandler(store, cfg.DefaultCountryCode)

	api := app.Group("/api")

	// OTP verification
	auth := api.Group("/otp")
	auth.Post("/send", otpHandler.Send)
	auth.Post("/verify", otpHandler.Verify)

	// Booking wizard
	wiz := api.Group("/wizard")
	wiz.Get("/:sid", wizardHandler.Open)
	wiz.Post("/:sid/events", wizardHandler.Event)
	wiz.Post("/:sid/close", wizardHandler.Close)

	// Trial bookings
	trials := api.Group("/trials")
	trials.Post("/", trialHandler.Create)
	trials.Get("/", trialHandler.ListByPhone)
	trials.Get("/:id", trialHandler.Get)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// Delivery-status callback - ENVIRONMENT-AWARE VALIDATION
	if cfg.Environment == "development" {
		// Development: skip validation for tunneled callbacks
		webhooks.Post("/sms-status", handlers.DeliveryStatus)
		println("⚠️  Webhook signature validation DISABLED for development")
	} else {
		webhooks.Post("/sms-status", middleware.ValidateWebhookSignature(cfg.WebhookKey), handlers.DeliveryStatus)
	}
}
