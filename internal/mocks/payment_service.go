package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) payment(args mock.Arguments) (*domain.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *PaymentService) payments(args mock.Arguments) ([]domain.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *PaymentService) RecordTransferReceipt(ctx context.Context, studentID uuid.UUID, receiptPath string) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, studentID, receiptPath))
}

func (m *PaymentService) RecordGatewayPayment(ctx context.Context, tx domain.GatewayTransaction) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, tx))
}

func (m *PaymentService) VerifyGatewayReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, reference))
}

func (m *PaymentService) InitiateGatewayPayment(ctx context.Context, studentID uuid.UUID) (*domain.PaymentInitiation, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentInitiation), args.Error(1)
}

func (m *PaymentService) Verify(ctx context.Context, paymentID, adminID uuid.UUID, input domain.VerifyPaymentInput) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, paymentID, adminID, input))
}

func (m *PaymentService) TotalPaid(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *PaymentService) ListAll(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Payment]), args.Error(1)
}

func (m *PaymentService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	return m.payments(m.Called(ctx, studentID))
}

func (m *PaymentService) StudentLedger(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	return m.payments(m.Called(ctx, studentID))
}
