package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/academyhq/academy-backend/database"
	"github.com/academyhq/academy-backend/internal/config"
	"github.com/academyhq/academy-backend/internal/jobs"
	"github.com/academyhq/academy-backend/internal/models"
	"github.com/academyhq/academy-backend/internal/otp"
	"github.com/academyhq/academy-backend/internal/routes"
	"github.com/academyhq/academy-backend/internal/storage"
	"github.com/academyhq/academy-backend/internal/wizard"
)

func main() {
	cfg := config.Load()

	// Initialize storage
	var store storage.Store

	if cfg.UseMemoryStore {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.OTPSession{},
			&models.SendCooldown{},
			&models.WizardSnapshot{},
			&models.TrialBooking{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Verification core
	verifier := otp.NewVerifier(store, cfg.OTPTTL, cfg.MaxAttempts, cfg.JWTSecret)
	if cfg.DevMode {
		verifier.SetDevCodes(cfg.DevCodes)
	}
	cooldown := otp.NewCooldown(store, cfg.SendCooldown)

	// Delivery providers in fixed priority order. The local adapter stays
	// outside the chain: explicit override or last resort when nothing is
	// configured.
	providers := []otp.Provider{
		otp.NewWhatsAppProvider(cfg.WhatsAppEndpoint, cfg.WhatsAppAPIKey, cfg.WhatsAppCampaign, cfg.WhatsAppShape),
		otp.NewMSG91Provider(cfg.MSG91AuthKey, cfg.MSG91TemplateID, cfg.MSG91SenderID),
		otp.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom),
		otp.NewIdentityProvider(cfg.IdentityBaseURL, cfg.IdentityAPIKey),
	}
	sender := otp.NewSender(verifier, cooldown, providers, otp.NewLocalProvider(), cfg.DefaultCountryCode)

	snapshots := wizard.NewSnapshots(store, cfg.SnapshotTTL)

	// Periodic cleanup of expired sessions and stale snapshots
	cleanupJob := jobs.NewCleanupJob(store, 5*time.Minute, cfg.SessionMaxAge, cfg.SnapshotTTL)
	cleanupJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Academy Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Service info endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "Academy Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": cfg.Environment,
			"storage":     storageType(cfg),
			"providers":   sender.EnabledProviders(),
		}

		if !cfg.UseMemoryStore && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var sessionCount, bookingCount, snapshotCount int64
			database.DB.Model(&models.OTPSession{}).Count(&sessionCount)
			database.DB.Model(&models.TrialBooking{}).Count(&bookingCount)
			database.DB.Model(&models.WizardSnapshot{}).Count(&snapshotCount)

			response["database"] = fiber.Map{
				"status":    dbStatus,
				"sessions":  sessionCount,
				"bookings":  bookingCount,
				"snapshots": snapshotCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if !cfg.UseMemoryStore && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database":  status == "healthy",
				"providers": sender.EnabledProviders(),
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, cfg, store, sender, verifier, snapshots)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping cleanup job...")
		cleanupJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Academy Backend starting on port %s", cfg.Port)
	log.Printf("📊 Storage: %s", storageType(cfg))
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("📱 OTP providers: %v", sender.EnabledProviders())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + cfg.Port))
}

func storageType(cfg config.Config) string {
	if cfg.UseMemoryStore {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
