package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type PaymentConfigRepository interface {
	Upsert(ctx context.Context, cfg *domain.PaymentConfig) error
	// Resolve picks the exact (level, session) row, then the global row, then
	// the most recently updated row. It returns nil when no config exists.
	Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error)
	List(ctx context.Context) ([]domain.PaymentConfig, error)
}

type paymentConfigRepository struct {
	db *sqlx.DB
}

func NewPaymentConfigRepository(db *sqlx.DB) PaymentConfigRepository {
	return &paymentConfigRepository{db: db}
}

func (r *paymentConfigRepository) Upsert(ctx context.Context, cfg *domain.PaymentConfig) error {
	query := `
		INSERT INTO payment_configs (id, level, session, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (level, session) DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query, cfg.ID, cfg.Level, cfg.Session, cfg.Amount).
		Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *paymentConfigRepository) Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error) {
	query := `
		SELECT * FROM payment_configs
		ORDER BY (level = $1 AND session = $2) DESC, (level = 0 AND session = '') DESC, updated_at DESC
		LIMIT 1`

	var cfg domain.PaymentConfig
	err := r.db.GetContext(ctx, &cfg, query, level, session)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *paymentConfigRepository) List(ctx context.Context) ([]domain.PaymentConfig, error) {
	configs := []domain.PaymentConfig{}
	err := r.db.SelectContext(ctx, &configs, `SELECT * FROM payment_configs ORDER BY level, session`)
	return configs, err
}
