package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
	"school-portal/internal/mocks"
)

func paymentApp(t *testing.T, principal *domain.Principal, maxBytes int) (*fiber.App, *mocks.PaymentService, string) {
	svc := new(mocks.PaymentService)
	dir := t.TempDir()
	h := NewPaymentHandler(svc, newUploader(dir, maxBytes))
	app := newTestApp(principal)
	app.Post("/payments/receipt", h.UploadReceipt)
	app.Get("/payments/me", h.MyLedger)
	app.Get("/payments/total", h.Total)
	app.Get("/payments", h.List)
	app.Patch("/payments/:id/verify", h.Verify)
	return app, svc, dir
}

func TestPaymentHandler_UploadReceipt(t *testing.T) {
	studentID := uuid.New()
	student := &domain.Principal{Role: domain.RoleStudent, ID: studentID}

	t.Run("stores the upload and hands its path to the service", func(t *testing.T) {
		app, svc, dir := paymentApp(t, student, 1024)
		var savedPath string
		svc.On("RecordTransferReceipt", mock.Anything, studentID, mock.MatchedBy(func(p string) bool {
			savedPath = p
			return strings.HasPrefix(p, dir) && filepath.Ext(p) == ".png"
		})).Return(&domain.Payment{ID: uuid.New(), StudentID: studentID, Status: domain.PaymentPending}, nil).Once()

		resp := do(t, app, multipartRequest(t, "/payments/receipt", "receipt", "Receipt.PNG", []byte("png-bytes")))

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		content, err := os.ReadFile(savedPath)
		assert.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))
		svc.AssertExpectations(t)
	})

	t.Run("missing file", func(t *testing.T) {
		app, svc, _ := paymentApp(t, student, 1024)

		resp := do(t, app, multipartRequest(t, "/payments/receipt", "", "", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		svc.AssertNotCalled(t, "RecordTransferReceipt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversized file", func(t *testing.T) {
		app, svc, dir := paymentApp(t, student, 4)

		resp := do(t, app, multipartRequest(t, "/payments/receipt", "receipt", "r.jpg", []byte("too large")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
		svc.AssertNotCalled(t, "RecordTransferReceipt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("incomplete profile lists the missing fields", func(t *testing.T) {
		app, svc, _ := paymentApp(t, student, 1024)
		svc.On("RecordTransferReceipt", mock.Anything, studentID, mock.Anything).
			Return(nil, domain.WithFields(domain.Forbiddenf("complete your profile first"), []string{"age", "address"})).Once()

		resp := do(t, app, multipartRequest(t, "/payments/receipt", "receipt", "r.jpg", []byte("x")))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var body struct {
			Fields []string `json:"fields"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, []string{"age", "address"}, body.Fields)
	})
}

func TestPaymentHandler_Verify(t *testing.T) {
	adminID := uuid.New()
	admin := &domain.Principal{Role: domain.RoleAdmin, ID: adminID}
	paymentID := uuid.New()

	t.Run("passes the decision through", func(t *testing.T) {
		app, svc, _ := paymentApp(t, admin, 1024)
		input := domain.VerifyPaymentInput{Status: domain.PaymentPaid, Remark: "Confirmed with bank"}
		svc.On("Verify", mock.Anything, paymentID, adminID, input).
			Return(&domain.Payment{ID: paymentID, Status: domain.PaymentPaid, VerifiedByAdmin: true}, nil).Once()

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/payments/"+paymentID.String()+"/verify", input))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("second approval conflicts", func(t *testing.T) {
		app, svc, _ := paymentApp(t, admin, 1024)
		svc.On("Verify", mock.Anything, paymentID, adminID, mock.Anything).
			Return(nil, domain.Conflictf("payment already verified")).Once()

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/payments/"+paymentID.String()+"/verify",
			domain.VerifyPaymentInput{Status: domain.PaymentPaid}))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestPaymentHandler_Reads(t *testing.T) {
	admin := &domain.Principal{Role: domain.RoleAdmin, ID: uuid.New()}

	t.Run("total", func(t *testing.T) {
		app, svc, _ := paymentApp(t, admin, 1024)
		svc.On("TotalPaid", mock.Anything).Return(250000.0, nil).Once()

		resp := do(t, app, httptest.NewRequest(http.MethodGet, "/payments/total", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body domain.TotalPaid
		decodeJSON(t, resp, &body)
		assert.Equal(t, 250000.0, body.Total)
	})

	t.Run("list clamps pagination", func(t *testing.T) {
		app, svc, _ := paymentApp(t, admin, 1024)
		params := domain.PaginationParams{Page: 1, PageSize: 100}
		svc.On("ListAll", mock.Anything, params).
			Return(domain.NewPaginatedResponse([]domain.Payment{}, params, 0), nil).Once()

		resp := do(t, app, httptest.NewRequest(http.MethodGet, "/payments?page=0&page_size=500", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("ledger", func(t *testing.T) {
		studentID := uuid.New()
		app, svc, _ := paymentApp(t, &domain.Principal{Role: domain.RoleStudent, ID: studentID}, 1024)
		svc.On("StudentLedger", mock.Anything, studentID).
			Return([]domain.Payment{{IsPlaceholder: true, Remark: "No payment made yet"}}, nil).Once()

		resp := do(t, app, httptest.NewRequest(http.MethodGet, "/payments/me", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body struct {
			Data []domain.Payment `json:"data"`
		}
		decodeJSON(t, resp, &body)
		assert.Len(t, body.Data, 1)
		assert.True(t, body.Data[0].IsPlaceholder)
	})
}

func TestValidateInput(t *testing.T) {
	err := validateInput(&domain.RegisterStudentInput{
		FirstName:  "Ada",
		LastName:   "Obi",
		Email:      "ada@example.com",
		Department: "Physics",
		Level:      300,
		Semester:   "first",
		Session:    "2024/2026",
		Password:   "longenough",
	})

	assert.True(t, domain.IsKind(err, domain.KindInvalid))
	var de *domain.Error
	assert.ErrorAs(t, err, &de)
	assert.Equal(t, []string{"session"}, de.Fields)

	assert.NoError(t, validateInput(&domain.UpsertPaymentConfigInput{Amount: 150000, Level: 100, Session: "2024/2025"}))
}
