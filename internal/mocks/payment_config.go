package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type PaymentConfigRepository struct {
	mock.Mock
}

func (m *PaymentConfigRepository) Upsert(ctx context.Context, cfg *domain.PaymentConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *PaymentConfigRepository) Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error) {
	args := m.Called(ctx, level, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConfig), args.Error(1)
}

func (m *PaymentConfigRepository) List(ctx context.Context) ([]domain.PaymentConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PaymentConfig), args.Error(1)
}

type PaymentConfigService struct {
	mock.Mock
}

func (m *PaymentConfigService) Upsert(ctx context.Context, adminID uuid.UUID, input domain.UpsertPaymentConfigInput) (*domain.PaymentConfig, error) {
	args := m.Called(ctx, adminID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConfig), args.Error(1)
}

func (m *PaymentConfigService) Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error) {
	args := m.Called(ctx, level, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentConfig), args.Error(1)
}

func (m *PaymentConfigService) Amount(ctx context.Context, level int, session string) (float64, error) {
	args := m.Called(ctx, level, session)
	return args.Get(0).(float64), args.Error(1)
}

func (m *PaymentConfigService) List(ctx context.Context) ([]domain.PaymentConfig, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PaymentConfig), args.Error(1)
}
