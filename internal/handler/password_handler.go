package handler

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/service/password"
)

type PasswordHandler struct {
	passwordService password.Service
}

func NewPasswordHandler(passwordService password.Service) *PasswordHandler {
	return &PasswordHandler{passwordService: passwordService}
}

// Forgot answers the same way whether or not the address belongs to an
// account of role.
func (h *PasswordHandler) Forgot(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input domain.ForgotPasswordInput
		if err := parseBody(c, &input); err != nil {
			return err
		}

		if err := h.passwordService.Forgot(c.UserContext(), role, input.Email); err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "If the email exists, a reset code has been sent",
		})
	}
}

func (h *PasswordHandler) VerifyCode(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input domain.VerifyCodeInput
		if err := parseBody(c, &input); err != nil {
			return err
		}

		if err := h.passwordService.VerifyCode(c.UserContext(), role, input.Email, input.Code); err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Code verified"})
	}
}

func (h *PasswordHandler) Reset(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input domain.ResetPasswordInput
		if err := parseBody(c, &input); err != nil {
			return err
		}

		err := h.passwordService.Reset(c.UserContext(), role, input.Email, input.Code, input.NewPassword)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password reset successfully"})
	}
}

func (h *PasswordHandler) Change(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.ChangePasswordInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if err := h.passwordService.Change(c.UserContext(), *principal, input.CurrentPassword, input.NewPassword); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password changed successfully"})
}
