package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, params domain.PaginationParams) ([]domain.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *sqlx.DB
}

func NewActivityLogRepository(db *sqlx.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (id, actor_role, actor_id, action, entity_type, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		entry.ID, entry.ActorRole, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, nullableJSON(entry.Detail),
	).Scan(&entry.CreatedAt)
}

func (r *activityLogRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.ActivityLog, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activity_logs`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var entries []domain.ActivityLog
	err := r.db.SelectContext(ctx, &entries, query, params.PageSize, params.Offset())
	return entries, total, err
}

// NewActivityLog builds a log row from an input, encoding Detail as JSON.
func NewActivityLog(input domain.RecordActivityInput) (*domain.ActivityLog, error) {
	entry := &domain.ActivityLog{
		ID:         uuid.New(),
		ActorRole:  input.ActorRole,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
	}
	if input.ActorID != uuid.Nil {
		id := input.ActorID
		entry.ActorID = &id
	}
	if input.Detail != nil {
		detail, err := json.Marshal(input.Detail)
		if err != nil {
			return nil, fmt.Errorf("encode activity detail: %w", err)
		}
		entry.Detail = detail
	}
	return entry, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
