package handler

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/middleware"
	"school-portal/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	notifs, err := h.notifService.ListForRecipient(c.UserContext(), principal.Role, principal.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": notifs})
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.UnreadCount(c.UserContext(), principal.Role, principal.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.notifService.MarkAllRead(c.UserContext(), principal.Role, principal.ID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
