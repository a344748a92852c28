package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/service/auth"
)

const PrincipalContextKey = "principal"

func AuthRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return Unauthorized("Missing authorization header")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || scheme != "Bearer" || token == "" {
			return Unauthorized("Invalid authorization header format")
		}

		principal, err := authService.Resolve(token)
		if err != nil {
			return err
		}

		c.Locals(PrincipalContextKey, principal)
		return c.Next()
	}
}

func GetPrincipal(c *fiber.Ctx) (*domain.Principal, error) {
	principal, ok := c.Locals(PrincipalContextKey).(*domain.Principal)
	if !ok || principal == nil {
		return nil, Unauthorized("Not authenticated")
	}
	return principal, nil
}
