package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/dispatch"
)

var ErrNotStored = errors.New("notification not stored")

type Service interface {
	// Notify stores a notification. It never fails the caller: storage
	// errors are logged and reported as a nil result.
	Notify(ctx context.Context, message string, typ domain.NotificationType, to domain.Recipient) *domain.Notification
	ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) error
	UnreadCount(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	logger    *slog.Logger
}

func NewService(notifRepo repository.NotificationRepository, logger *slog.Logger) Service {
	return &service{
		notifRepo: notifRepo,
		logger:    logger.With("component", "notification"),
	}
}

func (s *service) Notify(ctx context.Context, message string, typ domain.NotificationType, to domain.Recipient) *domain.Notification {
	if !to.IsValid() || !typ.IsValid() {
		s.logger.Error("invalid notification", "type", typ, "recipient_model", to.Role())
		return nil
	}

	notif := domain.NewNotification(message, typ, to)
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		s.logger.Error("failed to store notification",
			"recipient_model", notif.RecipientModel, "broadcast", to.IsBroadcast(), "error", err)
		return nil
	}
	return notif
}

func (s *service) ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error) {
	if !role.IsValid() {
		return nil, domain.Invalidf("unknown recipient model %q", role)
	}
	return s.notifRepo.ListForRecipient(ctx, role, id)
}

func (s *service) MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) error {
	if !role.IsValid() {
		return domain.Invalidf("unknown recipient model %q", role)
	}
	_, err := s.notifRepo.MarkAllRead(ctx, role, id)
	return err
}

func (s *service) UnreadCount(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	if !role.IsValid() {
		return 0, domain.Invalidf("unknown recipient model %q", role)
	}
	return s.notifRepo.CountUnread(ctx, role, id)
}

// Task wraps Notify for the dispatcher so that a dropped notification is
// counted as a failed task.
func Task(svc Service, message string, typ domain.NotificationType, to domain.Recipient) dispatch.Task {
	return func(ctx context.Context) error {
		if svc.Notify(ctx, message, typ, to) == nil {
			return ErrNotStored
		}
		return nil
	}
}
