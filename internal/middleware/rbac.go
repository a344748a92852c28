package middleware

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
)

func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := GetPrincipal(c)
		if err != nil {
			return err
		}

		for _, role := range roles {
			if principal.Role == role {
				return c.Next()
			}
		}
		return Forbidden("Insufficient permissions for this operation")
	}
}
