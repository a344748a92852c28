package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) Notify(ctx context.Context, message string, typ domain.NotificationType, to domain.Recipient) *domain.Notification {
	args := m.Called(ctx, message, typ, to)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.Notification)
}

func (m *NotificationService) ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error) {
	args := m.Called(ctx, role, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *NotificationService) MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) error {
	args := m.Called(ctx, role, id)
	return args.Error(0)
}

func (m *NotificationService) UnreadCount(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, role, id)
	return args.Get(0).(int64), args.Error(1)
}
