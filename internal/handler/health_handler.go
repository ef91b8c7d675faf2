package handler

import "github.com/gofiber/fiber/v3"

// HealthHandler answers liveness probes.
type HealthHandler struct {
	name    string
	version string
	module  string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(name, version, module string) *HealthHandler {
	return &HealthHandler{name: name, version: version, module: module}
}

// Register sets up the health route.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/healthz", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"app":     h.name,
		"version": h.version,
		"module":  h.module,
	})
}
