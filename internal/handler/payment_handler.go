package handler

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/service/payment"
	"school-portal/internal/service/paymentconfig"
)

type PaymentHandler struct {
	paymentService payment.Service
	uploads        uploader
}

func NewPaymentHandler(paymentService payment.Service, uploads uploader) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, uploads: uploads}
}

// UploadReceipt records a bank transfer from the "receipt" form file.
func (h *PaymentHandler) UploadReceipt(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	path, err := h.uploads.save(c, "receipt")
	if err != nil {
		return err
	}

	p, err := h.paymentService.RecordTransferReceipt(c.UserContext(), principal.ID, path)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PaymentHandler) InitiateGateway(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	initiation, err := h.paymentService.InitiateGatewayPayment(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(initiation)
}

func (h *PaymentHandler) VerifyGatewayReference(c *fiber.Ctx) error {
	var input struct {
		Reference string `json:"reference" validate:"required"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	p, err := h.paymentService.VerifyGatewayReference(c.UserContext(), input.Reference)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PaymentHandler) MyLedger(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	ledger, err := h.paymentService.StudentLedger(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": ledger})
}

func (h *PaymentHandler) List(c *fiber.Ctx) error {
	result, err := h.paymentService.ListAll(c.UserContext(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PaymentHandler) ListForStudent(c *fiber.Ctx) error {
	studentID, err := parseID(c, "studentId")
	if err != nil {
		return err
	}

	payments, err := h.paymentService.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": payments})
}

func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	paymentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input domain.VerifyPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	p, err := h.paymentService.Verify(c.UserContext(), paymentID, principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PaymentHandler) Total(c *fiber.Ctx) error {
	total, err := h.paymentService.TotalPaid(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(domain.TotalPaid{Total: total})
}

type PaymentConfigHandler struct {
	configService paymentconfig.Service
}

func NewPaymentConfigHandler(configService paymentconfig.Service) *PaymentConfigHandler {
	return &PaymentConfigHandler{configService: configService}
}

func (h *PaymentConfigHandler) Upsert(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.UpsertPaymentConfigInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	cfg, err := h.configService.Upsert(c.UserContext(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(cfg)
}

func (h *PaymentConfigHandler) List(c *fiber.Ctx) error {
	configs, err := h.configService.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"data": configs})
}

func (h *PaymentConfigHandler) Resolve(c *fiber.Ctx) error {
	cfg, err := h.configService.Resolve(c.UserContext(), c.QueryInt("level"), c.Query("session"))
	if err != nil {
		return err
	}
	if cfg == nil {
		return domain.NotFoundf("no payment configuration found")
	}
	return c.Status(fiber.StatusOK).JSON(cfg)
}
