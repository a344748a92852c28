package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrDuplicate    = errors.New("duplicate record")
	ErrStaleVersion = errors.New("record was modified concurrently")
	ErrReferenced   = errors.New("record is still referenced")
)

//go:embed schema.sql
var schema string

type Repositories struct {
	Admin         AdminRepository
	Teacher       TeacherRepository
	Student       StudentRepository
	Notification  NotificationRepository
	Message       MessageRepository
	Payment       PaymentRepository
	PaymentConfig PaymentConfigRepository
	ActivityLog   ActivityLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Admin:         NewAdminRepository(db),
		Teacher:       NewTeacherRepository(db),
		Student:       NewStudentRepository(db),
		Notification:  NewNotificationRepository(db),
		Message:       NewMessageRepository(db),
		Payment:       NewPaymentRepository(db),
		PaymentConfig: NewPaymentConfigRepository(db),
		ActivityLog:   NewActivityLogRepository(db),
	}
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// translate maps driver errors onto the package's sentinel errors.
func translate(err error) error {
	switch pqCode(err) {
	case "23505":
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case "23503":
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	return err
}
