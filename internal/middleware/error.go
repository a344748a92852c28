package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"school-portal/internal/domain"
)

type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	TraceID string   `json:"trace_id,omitempty"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:      fiber.StatusNotFound,
	domain.KindConflict:      fiber.StatusConflict,
	domain.KindUnprocessable: fiber.StatusUnprocessableEntity,
	domain.KindInvalid:       fiber.StatusBadRequest,
	domain.KindUnauthorized:  fiber.StatusUnauthorized,
	domain.KindForbidden:     fiber.StatusForbidden,
}

// ErrorHandler renders domain errors with their mapped status, fiber errors
// as-is, and anything else as a logged 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		traceID := uuid.New().String()[:8]
		resp := ErrorResponse{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
			TraceID: traceID,
		}

		status := statusOf(err)

		var de *domain.Error
		var fe *fiber.Error
		switch {
		case errors.As(err, &de):
			resp.Code = string(de.Kind)
			resp.Message = de.Message
			resp.Fields = de.Fields
		case errors.As(err, &fe):
			resp.Code = fiberCode(fe.Code)
			resp.Message = fe.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(), "path", c.Path(), "trace_id", traceID, "error", err)
		}

		return c.Status(status).JSON(resp)
	}
}

func statusOf(err error) int {
	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := kindStatus[de.Kind]; ok {
			return status
		}
		return fiber.StatusInternalServerError
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	}
	return "INTERNAL_ERROR"
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}

func Forbidden(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusForbidden, message)
}
