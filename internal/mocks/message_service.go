package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type MessageService struct {
	mock.Mock
}

func (m *MessageService) Send(ctx context.Context, sender, recipient domain.Participant, text string) (*domain.Message, error) {
	args := m.Called(ctx, sender, recipient, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MessageService) Thread(ctx context.Context, viewer, other domain.Participant) ([]domain.Message, error) {
	args := m.Called(ctx, viewer, other)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MessageService) Edit(ctx context.Context, actor domain.Participant, id uuid.UUID, text string) (*domain.Message, error) {
	args := m.Called(ctx, actor, id, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MessageService) Delete(ctx context.Context, actor domain.Participant, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MessageService) UnreadCounts(ctx context.Context, viewer domain.Participant) (*domain.UnreadCounts, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnreadCounts), args.Error(1)
}

func (m *MessageService) AdminBroadcasts(ctx context.Context) ([]domain.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}
