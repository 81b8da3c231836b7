package controller

import (
	"time"

	"kisansetu-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports a named dependency's status.
type HealthCheck func() error

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	checks map[string]HealthCheck
}

func NewHealthController(checks map[string]HealthCheck) IHealthController {
	return &healthController{checks: checks}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	status := "OK"
	deps := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(); err != nil {
			deps[name] = err.Error()
			status = "DEGRADED"
			continue
		}
		deps[name] = "ok"
	}

	return ctx.JSON(serverutils.SuccessResponse("KisanSetu API is running", fiber.Map{
		"status":       status,
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
	}))
}
