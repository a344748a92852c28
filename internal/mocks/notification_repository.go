package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	args := m.Called(ctx, notif)
	return args.Error(0)
}

func (m *NotificationRepository) ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, role, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, role, id)
	return args.Get(0).(int64), args.Error(1)
}
