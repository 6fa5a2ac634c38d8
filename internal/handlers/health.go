package handlers

import "github.com/gofiber/fiber/v2"

// HealthHandler handles health check requests
type HealthHandler struct {
	Version     string
	StorageType string
	Providers   func() []string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version, storageType string, providers func() []string) *HealthHandler {
	return &HealthHandler{
		Version:     version,
		StorageType: storageType,
		Providers:   providers,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"service":   "Academy Backend",
		"version":   h.Version,
		"storage":   h.StorageType,
		"providers": h.Providers(),
	})
}
