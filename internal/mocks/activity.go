package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type ActivityLogRepository struct {
	mock.Mock
}

func (m *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.ActivityLog, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.ActivityLog), args.Get(1).(int64), args.Error(2)
}

type ActivityService struct {
	mock.Mock
}

func (m *ActivityService) Record(ctx context.Context, input domain.RecordActivityInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *ActivityService) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityLog], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.PaginatedResponse[domain.ActivityLog]), args.Error(1)
}
