package middleware

import (
	"github.com/gofiber/fiber/v2"
	"os"
	"strings"
)

// NewAdminMiddleware guards the back-office listing endpoints with a static
// token, matched against X-Admin-Token or a Bearer Authorization header.
func (m *middleware) NewAdminMiddleware(ctx *fiber.Ctx) error {
	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		m.log.Warn("ADMIN_TOKEN not configured, admin endpoints disabled")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Admin access not configured",
		})
	}

	header := ctx.Get("X-Admin-Token")
	if header == "" {
		auth := ctx.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			header = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
	}

	if header != adminToken {
		m.log.WithField("ip", ctx.IP()).Warn("Rejected admin request with invalid token")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No autorizado",
		})
	}

	return ctx.Next()
}
