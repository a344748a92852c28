package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// Thread returns every message exchanged between a and b in send order.
	Thread(ctx context.Context, a, b domain.Participant) ([]domain.Message, error)
	// MarkRead flags unread messages from sender to recipient as read.
	MarkRead(ctx context.Context, sender, recipient domain.Participant) (int64, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) (*domain.Message, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	UnreadBySender(ctx context.Context, recipient domain.Participant) ([]domain.SenderCount, error)
	ListFromAdminToTeachers(ctx context.Context) ([]domain.Message, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = `id, sender, recipient, sender_id, receiver_id, text, is_read, sent_at`

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender, recipient, sender_id, receiver_id, text, is_read, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.Sender, msg.Recipient, msg.SenderID, msg.ReceiverID, msg.Text, msg.IsRead, msg.Timestamp,
	)
	return err
}

func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Thread(ctx context.Context, a, b domain.Participant) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
		ORDER BY sent_at ASC, seq ASC`

	messages := []domain.Message{}
	err := r.db.SelectContext(ctx, &messages, query, a, b)
	return messages, err
}

func (r *messageRepository) MarkRead(ctx context.Context, sender, recipient domain.Participant) (int64, error) {
	query := `UPDATE messages SET is_read = TRUE WHERE sender = $1 AND recipient = $2 AND is_read = FALSE`

	res, err := r.db.ExecContext(ctx, query, sender, recipient)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *messageRepository) UpdateText(ctx context.Context, id uuid.UUID, text string) (*domain.Message, error) {
	var msg domain.Message
	query := `UPDATE messages SET text = $2 WHERE id = $1 RETURNING ` + messageColumns

	err := r.db.GetContext(ctx, &msg, query, id, text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *messageRepository) UnreadBySender(ctx context.Context, recipient domain.Participant) ([]domain.SenderCount, error) {
	query := `
		SELECT sender, COUNT(*) AS count FROM messages
		WHERE recipient = $1 AND is_read = FALSE
		GROUP BY sender`

	var counts []domain.SenderCount
	err := r.db.SelectContext(ctx, &counts, query, recipient)
	return counts, err
}

func (r *messageRepository) ListFromAdminToTeachers(ctx context.Context) ([]domain.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE sender = $1 AND recipient LIKE $2
		ORDER BY sent_at ASC, seq ASC`

	messages := []domain.Message{}
	err := r.db.SelectContext(ctx, &messages, query, domain.AdminParticipant(), string(domain.RoleTeacher)+"-%")
	return messages, err
}
