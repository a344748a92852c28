package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ActivityLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ActorRole  Role            `json:"actor_role" db:"actor_role"`
	ActorID    *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	Detail     json.RawMessage `json:"detail,omitempty" db:"detail"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type RecordActivityInput struct {
	ActorRole  Role
	ActorID    uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Detail     any
}

const (
	ActionPaymentVerified  = "payment.verified"
	ActionPaymentConfigSet = "payment_config.upserted"
	ActionTeacherApproved  = "teacher.approved"
	ActionTeacherRejected  = "teacher.rejected"

	ActionTeacherDeleted        = "teacher.deleted"
	ActionTeacherDepartmentSet  = "teacher.department_updated"
	ActionTeacherProfileUpdated = "teacher.profile_updated"
	ActionStudentDeleted        = "student.deleted"
	ActionStudentDetailsUpdated = "student.details_updated"
	ActionStudentPromoted       = "student.promoted"
	ActionStudentDepartmentSet  = "student.department_changed"
	ActionAdminProfileUpdated   = "admin.profile_updated"
	ActionPasswordChanged       = "account.password_changed"
	ActionPasswordReset         = "account.password_reset"
)
