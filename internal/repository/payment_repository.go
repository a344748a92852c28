package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"school-portal/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	// CreateWithStudentStatus inserts the payment and mirrors status onto the
	// owning student in one transaction.
	CreateWithStudentStatus(ctx context.Context, payment *domain.Payment, status domain.StudentPaymentStatus) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	FindPendingTransfer(ctx context.Context, studentID uuid.UUID, session string, level int) (*domain.Payment, error)
	ListAll(ctx context.Context, params domain.PaginationParams) ([]domain.Payment, int64, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error)
	// ApplyVerification persists a decision when the stored version still
	// matches payment.Version. A mismatch yields ErrStaleVersion.
	ApplyVerification(ctx context.Context, payment *domain.Payment) error
	SumPaid(ctx context.Context) (float64, error)
	// HasVerifiedPayment reports whether the student has an admin-verified
	// paid record for the level and session.
	HasVerifiedPayment(ctx context.Context, studentID uuid.UUID, level int, session string) (bool, error)
}

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const insertPayment = `
	INSERT INTO payments (id, student_id, session, level, department, semester, method,
		amount_expected, amount_paid, status, receipt_url, reference, remark, paid_at)
	VALUES (:id, :student_id, :session, :level, :department, :semester, :method,
		:amount_expected, :amount_paid, :status, :receipt_url, :reference, :remark, :paid_at)
	RETURNING version, created_at, updated_at`

func insertPaymentRow(ctx context.Context, q sqlx.ExtContext, payment *domain.Payment) error {
	query, args, err := sqlx.Named(insertPayment, payment)
	if err != nil {
		return err
	}
	query = q.Rebind(query)
	return translate(
		q.QueryRowxContext(ctx, query, args...).Scan(&payment.Version, &payment.CreatedAt, &payment.UpdatedAt),
	)
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return insertPaymentRow(ctx, r.db, payment)
}

func (r *paymentRepository) CreateWithStudentStatus(ctx context.Context, payment *domain.Payment, status domain.StudentPaymentStatus) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := insertPaymentRow(ctx, tx, payment); err != nil {
		return err
	}
	if err := setStudentPaymentStatus(ctx, tx, payment.StudentID, status); err != nil {
		return err
	}
	return tx.Commit()
}

func setStudentPaymentStatus(ctx context.Context, tx *sqlx.Tx, studentID uuid.UUID, status domain.StudentPaymentStatus) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE students SET payment_status = $2, updated_at = NOW() WHERE id = $1`, studentID, status)
	if err != nil {
		return fmt.Errorf("update student payment status: %w", err)
	}
	return nil
}

func (r *paymentRepository) get(ctx context.Context, query string, args ...any) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.GetContext(ctx, &payment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return r.get(ctx, `SELECT * FROM payments WHERE id = $1`, id)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return r.get(ctx, `SELECT * FROM payments WHERE reference = $1`, reference)
}

func (r *paymentRepository) FindPendingTransfer(ctx context.Context, studentID uuid.UUID, session string, level int) (*domain.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE student_id = $1 AND session = $2 AND level = $3 AND method = $4 AND status = $5
		ORDER BY created_at DESC
		LIMIT 1`
	return r.get(ctx, query, studentID, session, level, domain.MethodTransfer, domain.PaymentPending)
}

func (r *paymentRepository) ListAll(ctx context.Context, params domain.PaginationParams) ([]domain.Payment, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments`); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM payments
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, params.PageSize, params.Offset())
	return payments, total, err
}

func (r *paymentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	err := r.db.SelectContext(ctx, &payments,
		`SELECT * FROM payments WHERE student_id = $1 ORDER BY created_at DESC`, studentID)
	return payments, err
}

func (r *paymentRepository) ApplyVerification(ctx context.Context, payment *domain.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		UPDATE payments
		SET status = $3, verified_by_admin = $4, verified_by = $5, amount_paid = $6, remark = $7,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		payment.ID, payment.Version, payment.Status, payment.VerifiedByAdmin,
		payment.VerifiedBy, payment.AmountPaid, payment.Remark,
	).Scan(&payment.Version, &payment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleVersion
	}
	if err != nil {
		return err
	}

	if err := setStudentPaymentStatus(ctx, tx, payment.StudentID, payment.Status.StudentStatus()); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *paymentRepository) SumPaid(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount_paid), 0) FROM payments WHERE status = $1`, domain.PaymentPaid)
	return total, err
}

func (r *paymentRepository) HasVerifiedPayment(ctx context.Context, studentID uuid.UUID, level int, session string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM payments
			WHERE student_id = $1 AND level = $2 AND session = $3
				AND status = $4 AND verified_by_admin = TRUE
		)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, studentID, level, session, domain.PaymentPaid)
	return exists, err
}
