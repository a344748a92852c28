package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
		}
		return name
	})
	v.RegisterValidation("session", func(fl validator.FieldLevel) bool {
		return domain.ValidSession(fl.Field().String())
	})
	return v
}

// validateInput runs struct validation and reports the failing fields by
// their json names.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return domain.WithFields(
		domain.Invalidf("invalid value for %s", strings.Join(fields, ", ")),
		fields,
	)
}

func parseBody(c *fiber.Ctx, input any) error {
	if err := c.BodyParser(input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	return validateInput(input)
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + param)
	}
	return id, nil
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}
	params.Validate()
	return params
}

// uploader stores multipart files under the temp dir so the services can
// hand them to object storage by path.
type uploader struct {
	dir      string
	maxBytes int64
}

func newUploader(dir string, maxBytes int) uploader {
	return uploader{dir: dir, maxBytes: int64(maxBytes)}
}

func (u uploader) save(c *fiber.Ctx, field string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", middleware.BadRequest(field + " file is required")
	}
	if u.maxBytes > 0 && file.Size > u.maxBytes {
		return "", fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("%s must be at most %d MB", field, u.maxBytes/(1024*1024)))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	path := filepath.Join(u.dir, uuid.NewString()+ext)
	if err := c.SaveFile(file, path); err != nil {
		return "", fmt.Errorf("save upload %s: %w", field, err)
	}
	return path, nil
}
