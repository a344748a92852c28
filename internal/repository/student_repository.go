package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	GetByEmail(ctx context.Context, email string) (*domain.Student, error)
	GetByNumber(ctx context.Context, number string) (*domain.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	List(ctx context.Context, params domain.PaginationParams) ([]domain.Student, int64, error)
	UpdateProfile(ctx context.Context, student *domain.Student) error
	UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error
	// UpdateAcademic writes the fields an administrator controls: department,
	// level, semester, session and payment status.
	UpdateAcademic(ctx context.Context, student *domain.Student) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	// Delete reports whether a row was removed. A student with payment
	// records yields ErrReferenced.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	// ListEmails returns the addresses of students in a level and session.
	// A zero level or empty session matches every value.
	ListEmails(ctx context.Context, level int, session string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *sqlx.DB
}

func NewStudentRepository(db *sqlx.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (id, student_number, first_name, last_name, email, department,
			level, semester, session, payment_status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		student.ID, student.StudentNumber, student.FirstName, student.LastName, student.Email,
		student.Department, student.Level, student.Semester, student.Session,
		student.PaymentStatus, student.PasswordHash,
	).Scan(&student.CreatedAt, &student.UpdatedAt)
	return translate(err)
}

func (r *studentRepository) get(ctx context.Context, query string, arg any) (*domain.Student, error) {
	var student domain.Student
	err := r.db.GetContext(ctx, &student, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return r.get(ctx, `SELECT * FROM students WHERE id = $1`, id)
}

func (r *studentRepository) GetByEmail(ctx context.Context, email string) (*domain.Student, error) {
	return r.get(ctx, `SELECT * FROM students WHERE email = $1`, email)
}

func (r *studentRepository) GetByNumber(ctx context.Context, number string) (*domain.Student, error) {
	return r.get(ctx, `SELECT * FROM students WHERE student_number = $1`, number)
}

func (r *studentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM students WHERE email = $1)`, email)
	return exists, err
}

func (r *studentRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE student_number LIKE $1`, prefix+"%")
	return count, err
}

func (r *studentRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.Student, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM students`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM students
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var students []domain.Student
	err := r.db.SelectContext(ctx, &students, query, params.PageSize, params.Offset())
	return students, total, err
}

func (r *studentRepository) UpdateProfile(ctx context.Context, student *domain.Student) error {
	query := `
		UPDATE students
		SET phone_number = :phone_number, age = :age, gender = :gender, marital_status = :marital_status,
			date_of_birth = :date_of_birth, nationality = :nationality, state_of_origin = :state_of_origin,
			address = :address, level = :level, semester = :semester, session = :session, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, student)
	return err
}

func (r *studentRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE students SET profile_photo = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

func (r *studentRepository) UpdateAcademic(ctx context.Context, student *domain.Student) error {
	query := `
		UPDATE students
		SET department = :department, level = :level, semester = :semester, session = :session,
			payment_status = :payment_status, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, student)
	return err
}

func (r *studentRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE students SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}

func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return false, translate(err)
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *studentRepository) ListEmails(ctx context.Context, level int, session string) ([]string, error) {
	query := `
		SELECT email FROM students
		WHERE ($1 = 0 OR level = $1) AND ($2 = '' OR session = $2)
		ORDER BY email`

	var emails []string
	err := r.db.SelectContext(ctx, &emails, query, level, session)
	return emails, err
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`)
	return count, err
}
