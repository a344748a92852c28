package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"school-portal/internal/config"
	"school-portal/internal/domain"
)

var ErrNotConfigured = errors.New("payment gateway is not configured")

type Client interface {
	VerifyTransaction(ctx context.Context, reference string) (*domain.GatewayTransaction, error)
}

type paystackClient struct {
	baseURL string
	secret  string
	timeout time.Duration
}

func NewPaystackClient(cfg *config.Config) Client {
	return &paystackClient{
		baseURL: strings.TrimRight(cfg.PaystackBaseURL, "/"),
		secret:  cfg.PaystackSecretKey,
		timeout: cfg.PaystackTimeout,
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status        string          `json:"status"`
		Reference     string          `json:"reference"`
		Amount        int64           `json:"amount"`
		PaidAt        string          `json:"paid_at"`
		Metadata      json.RawMessage `json:"metadata"`
		Authorization struct {
			ReceiptURL string `json:"receipt_url"`
		} `json:"authorization"`
	} `json:"data"`
}

type rawMetadata struct {
	StudentID string `json:"studentId"`
	Name      string `json:"name"`
	Session   string `json:"session"`
	Level     any    `json:"level"`
}

func (c *paystackClient) VerifyTransaction(ctx context.Context, reference string) (*domain.GatewayTransaction, error) {
	if c.secret == "" {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(c.baseURL + "/transaction/verify/" + url.PathEscape(reference))
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.secret)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.timeout > 0 {
		agent.Timeout(c.timeout)
	}
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("build paystack request: %w", err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("paystack verify %s: %w", reference, errors.Join(errs...))
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode paystack response (status %d): %w", code, err)
	}
	if code == fiber.StatusNotFound || code == fiber.StatusBadRequest {
		return nil, domain.Invalidf("payment reference %s could not be verified: %s", reference, resp.Message)
	}
	if code >= 300 || !resp.Status {
		return nil, fmt.Errorf("paystack verify %s: status %d: %s", reference, code, resp.Message)
	}

	tx := &domain.GatewayTransaction{
		Reference:  resp.Data.Reference,
		Status:     resp.Data.Status,
		Amount:     resp.Data.Amount,
		ReceiptURL: resp.Data.Authorization.ReceiptURL,
	}
	if tx.Reference == "" {
		tx.Reference = reference
	}
	if resp.Data.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, resp.Data.PaidAt); err == nil {
			tx.PaidAt = &paidAt
		}
	}
	tx.Metadata = decodeMetadata(resp.Data.Metadata)

	return tx, nil
}

// decodeMetadata tolerates the metadata shapes clients send: an object or a
// JSON-encoded string, with level as a number or a string.
func decodeMetadata(raw json.RawMessage) domain.GatewayMetadata {
	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = json.RawMessage(encoded)
	}

	var m rawMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.GatewayMetadata{}
	}

	meta := domain.GatewayMetadata{StudentID: m.StudentID, Name: m.Name, Session: m.Session}
	switch v := m.Level.(type) {
	case float64:
		meta.Level = int(v)
	case string:
		meta.Level, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	return meta
}
