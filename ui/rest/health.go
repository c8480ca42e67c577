package rest

import "github.com/gofiber/fiber/v2"

// RegisterHealth implements GET /health: a bare liveness probe, no
// scope, no dependency check beyond the process being alive to answer.
func RegisterHealth(router fiber.Router) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{"status": "ok"})
	})
}
