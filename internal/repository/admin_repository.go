package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error
	UpdateProfile(ctx context.Context, admin *domain.Admin) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

type adminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, first_name, last_name, email, gender, phone_number, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		admin.ID, admin.FirstName, admin.LastName, admin.Email,
		admin.Gender, admin.PhoneNumber, admin.PasswordHash,
	).Scan(&admin.CreatedAt, &admin.UpdatedAt)
	return translate(err)
}

func (r *adminRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.db.GetContext(ctx, &admin, `SELECT * FROM admins WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var admin domain.Admin
	err := r.db.GetContext(ctx, &admin, `SELECT * FROM admins WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, email)
	return exists, err
}

func (r *adminRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET profile_photo = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *adminRepository) UpdateProfile(ctx context.Context, admin *domain.Admin) error {
	query := `
		UPDATE admins
		SET first_name = :first_name, last_name = :last_name, gender = :gender,
			phone_number = :phone_number, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, admin)
	return err
}

func (r *adminRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}
