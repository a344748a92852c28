package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/mocks"
)

func newApp() *fiber.App {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
}

func decode(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NotFoundf("payment missing"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", domain.Conflictf("already verified"), http.StatusConflict, "CONFLICT"},
		{"unprocessable", domain.Unprocessablef("no config"), http.StatusUnprocessableEntity, "UNPROCESSABLE"},
		{"invalid", domain.Invalidf("bad channel"), http.StatusBadRequest, "INVALID"},
		{"unauthorized", domain.Unauthorizedf("bad token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", domain.Forbiddenf("profile incomplete"), http.StatusForbidden, "FORBIDDEN"},
		{"wrapped domain error", fmt.Errorf("verify: %w", domain.Conflictf("stale")), http.StatusConflict, "CONFLICT"},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "Invalid request body"), http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown error", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.TraceID)
		})
	}

	t.Run("internal errors hide their message", func(t *testing.T) {
		app := newApp()
		app.Get("/", func(c *fiber.Ctx) error { return errors.New("pq: password authentication failed") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, "Internal server error", decode(t, resp).Message)
	})

	t.Run("fields are rendered", func(t *testing.T) {
		app := newApp()
		app.Get("/", func(c *fiber.Ctx) error {
			return domain.WithFields(domain.Forbiddenf("complete your profile"), []string{"age"})
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, []string{"age"}, decode(t, resp).Fields)
	})
}

func TestAuthRequired(t *testing.T) {
	principal := &domain.Principal{Role: domain.RoleStudent, ID: uuid.New()}

	setup := func() (*fiber.App, *mocks.AuthService) {
		authSvc := new(mocks.AuthService)
		app := newApp()
		app.Get("/me", middleware.AuthRequired(authSvc), func(c *fiber.Ctx) error {
			p, err := middleware.GetPrincipal(c)
			if err != nil {
				return err
			}
			return c.JSON(p)
		})
		return app, authSvc
	}

	t.Run("valid bearer token", func(t *testing.T) {
		app, authSvc := setup()
		authSvc.On("Resolve", "good").Return(principal, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got domain.Principal
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, *principal, got)
	})

	t.Run("missing header", func(t *testing.T) {
		app, _ := setup()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		app, _ := setup()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejected token", func(t *testing.T) {
		app, authSvc := setup()
		authSvc.On("Resolve", "expired").Return(nil, domain.Unauthorizedf("token expired")).Once()

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer expired")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireRole(t *testing.T) {
	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		role := domain.Role(c.Get("X-Role"))
		if role != "" {
			c.Locals(middleware.PrincipalContextKey, &domain.Principal{Role: role, ID: uuid.New()})
		}
		return c.Next()
	})
	app.Get("/admin", middleware.RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	call := func(role string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if role != "" {
			req.Header.Set("X-Role", role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNoContent, call("Admin"))
	assert.Equal(t, http.StatusForbidden, call("Student"))
	assert.Equal(t, http.StatusUnauthorized, call(""))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newApp()
	app.Use(middleware.Metrics(reg))
	app.Get("/payments/:id", func(c *fiber.Ctx) error { return domain.NotFoundf("missing") })

	for i := 0; i < 2; i++ {
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/payments/"+uuid.NewString(), nil))
		require.NoError(t, err)
	}

	expected := `
# HELP school_portal_http_requests_total HTTP requests by method, route and status.
# TYPE school_portal_http_requests_total counter
school_portal_http_requests_total{method="GET",route="/payments/:id",status="404"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "school_portal_http_requests_total"))
}
