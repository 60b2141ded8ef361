package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"uploadapi/internal/config"
	"uploadapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, cfg *config.AppConfig, uploadSvc service.UploadService) {
	// Health endpoint: verifies the deployment carries the secrets the
	// upload flow will need (there is no database or local state to check).
	app.Get("/health", HealthCheck(cfg))

	// Backward-compatible simple liveness probe
	app.Get("/healthz", LivenessProbe())

	app.Post("/api/upload-url", CreateUploadURL(uploadSvc))
}

// HealthCheck reports whether required configuration is present.
func HealthCheck(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		missing := missingConfig(cfg)
		if len(missing) > 0 {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "missing configuration: "+strings.Join(missing, ", "))
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

func missingConfig(cfg *config.AppConfig) []string {
	var missing []string
	if cfg.Google.ClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if cfg.Google.ClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if cfg.Google.RefreshToken == "" {
		missing = append(missing, "GOOGLE_REFRESH_TOKEN")
	}
	return missing
}
