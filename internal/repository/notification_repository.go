package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

// NotificationRepository matches a (role, id) reader against both rows
// addressed to that id and role-wide broadcast rows.
type NotificationRepository interface {
	Create(ctx context.Context, notif *domain.Notification) error
	ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

const recipientMatch = `recipient_model = $1 AND (recipient_id = $2 OR recipient_id IS NULL)`

func (r *notificationRepository) Create(ctx context.Context, notif *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, message, type, is_read, recipient_id, recipient_model)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		notif.ID, notif.Message, notif.Type, notif.IsRead, notif.RecipientID, notif.RecipientModel,
	).Scan(&notif.CreatedAt)
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, role domain.Role, id uuid.UUID) ([]domain.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE ` + recipientMatch + `
		ORDER BY created_at DESC`

	notifications := []domain.Notification{}
	err := r.db.SelectContext(ctx, &notifications, query, role, id)
	return notifications, err
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET is_read = TRUE WHERE ` + recipientMatch + ` AND is_read = FALSE`

	res, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *notificationRepository) CountUnread(ctx context.Context, role domain.Role, id uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE ` + recipientMatch + ` AND is_read = FALSE`
	err := r.db.GetContext(ctx, &count, query, role, id)
	return count, err
}
