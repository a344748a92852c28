package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) CreateWithStudentStatus(ctx context.Context, payment *domain.Payment, status domain.StudentPaymentStatus) error {
	args := m.Called(ctx, payment, status)
	return args.Error(0)
}

func (m *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *PaymentRepository) FindPendingTransfer(ctx context.Context, studentID uuid.UUID, session string, level int) (*domain.Payment, error) {
	args := m.Called(ctx, studentID, session, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *PaymentRepository) ListAll(ctx context.Context, params domain.PaginationParams) ([]domain.Payment, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *PaymentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, studentID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *PaymentRepository) ApplyVerification(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) SumPaid(ctx context.Context) (float64, error) {
	args := m.Called(ctx)
	return args.Get(0).(float64), args.Error(1)
}

func (m *PaymentRepository) HasVerifiedPayment(ctx context.Context, studentID uuid.UUID, level int, session string) (bool, error) {
	args := m.Called(ctx, studentID, level, session)
	return args.Bool(0), args.Error(1)
}
