package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type TeacherRepository interface {
	Create(ctx context.Context, teacher *domain.Teacher) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*domain.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) ([]domain.Teacher, int64, error)
	UpdateStatus(ctx context.Context, teacher *domain.Teacher) error
	CountByStaffPrefix(ctx context.Context, prefix string) (int64, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error
	UpdateProfile(ctx context.Context, teacher *domain.Teacher) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
	CountApproved(ctx context.Context) (int64, error)
}

type teacherRepository struct {
	db *sqlx.DB
}

func NewTeacherRepository(db *sqlx.DB) TeacherRepository {
	return &teacherRepository{db: db}
}

func (r *teacherRepository) Create(ctx context.Context, teacher *domain.Teacher) error {
	query := `
		INSERT INTO teachers (id, title, first_name, last_name, email, phone_number, department,
			status, is_approved, cv_url, certificate_url, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		teacher.ID, teacher.Title, teacher.FirstName, teacher.LastName, teacher.Email,
		teacher.PhoneNumber, teacher.Department, teacher.Status, teacher.IsApproved,
		teacher.CVURL, teacher.CertificateURL, teacher.PasswordHash,
	).Scan(&teacher.CreatedAt, &teacher.UpdatedAt)
	return translate(err)
}

func (r *teacherRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := r.db.GetContext(ctx, &teacher, `SELECT * FROM teachers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) GetByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := r.db.GetContext(ctx, &teacher, `SELECT * FROM teachers WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM teachers WHERE email = $1)`, email)
	return exists, err
}

func (r *teacherRepository) List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) ([]domain.Teacher, int64, error) {
	params.Validate()

	var total int64
	var teachers []domain.Teacher

	if status != nil {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM teachers WHERE status = $1`, *status); err != nil {
			return nil, 0, err
		}
		query := `
			SELECT * FROM teachers
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &teachers, query, *status, params.PageSize, params.Offset())
		return teachers, total, err
	}

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM teachers`); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT * FROM teachers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &teachers, query, params.PageSize, params.Offset())
	return teachers, total, err
}

func (r *teacherRepository) UpdateStatus(ctx context.Context, teacher *domain.Teacher) error {
	query := `
		UPDATE teachers
		SET status = :status, is_approved = :is_approved, staff_number = :staff_number, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, teacher)
	return translate(err)
}

func (r *teacherRepository) CountByStaffPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers WHERE staff_number LIKE $1`, prefix+"%")
	return count, err
}

func (r *teacherRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE teachers SET profile_photo = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *teacherRepository) UpdateProfile(ctx context.Context, teacher *domain.Teacher) error {
	query := `
		UPDATE teachers
		SET title = :title, first_name = :first_name, last_name = :last_name,
			phone_number = :phone_number, department = :department, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, teacher)
	return err
}

func (r *teacherRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE teachers SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

func (r *teacherRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return false, translate(err)
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *teacherRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers`)
	return count, err
}

func (r *teacherRepository) CountApproved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM teachers WHERE is_approved = TRUE`)
	return count, err
}
