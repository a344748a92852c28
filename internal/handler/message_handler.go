package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/service/message"
)

type MessageHandler struct {
	messageService message.Service
}

func NewMessageHandler(messageService message.Service) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.SendMessageInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	var recipientID uuid.UUID
	if input.RecipientID != "" {
		recipientID, err = uuid.Parse(input.RecipientID)
		if err != nil {
			return middleware.BadRequest("Invalid recipient_id")
		}
	}
	recipient, err := domain.NewParticipant(domain.Role(input.RecipientRole), recipientID)
	if err != nil {
		return err
	}

	msg, err := h.messageService.Send(c.UserContext(), principal.Participant(), recipient, input.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// Thread returns the conversation with the participant named by the "with"
// query tag, e.g. ?with=Teacher-<id> or ?with=Admin.
func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	other, err := domain.ParseParticipant(c.Query("with"))
	if err != nil {
		return err
	}

	msgs, err := h.messageService.Thread(c.UserContext(), principal.Participant(), other)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": msgs})
}

func (h *MessageHandler) Edit(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input domain.EditMessageInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	msg, err := h.messageService.Edit(c.UserContext(), principal.Participant(), id, input.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(msg)
}

func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.messageService.Delete(c.UserContext(), principal.Participant(), id); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *MessageHandler) UnreadCounts(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	counts, err := h.messageService.UnreadCounts(c.UserContext(), principal.Participant())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(counts)
}

func (h *MessageHandler) AdminBroadcasts(c *fiber.Ctx) error {
	msgs, err := h.messageService.AdminBroadcasts(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": msgs})
}
