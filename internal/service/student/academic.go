package student

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/notification"
)

const finalLevel = 500

func (s *service) UpdateDetails(ctx context.Context, adminID, studentID uuid.UUID, input domain.UpdateStudentDetailsInput) (*domain.Student, error) {
	if err := validateAcademic(input); err != nil {
		return nil, err
	}
	student, err := s.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.applyAcademic(ctx, adminID, student, input, domain.ActionStudentDetailsUpdated)
}

func (s *service) Promote(ctx context.Context, adminID, studentID uuid.UUID) (*domain.Student, error) {
	student, err := s.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Level >= finalLevel {
		return nil, domain.Unprocessablef("student is already at level %d", finalLevel)
	}

	next := student.Level + 100
	return s.applyAcademic(ctx, adminID, student, domain.UpdateStudentDetailsInput{Level: &next}, domain.ActionStudentPromoted)
}

func (s *service) ChangeDepartment(ctx context.Context, adminID, studentID uuid.UUID, department string) (*domain.Student, error) {
	input := domain.UpdateStudentDetailsInput{Department: &department}
	if err := validateAcademic(input); err != nil {
		return nil, err
	}
	student, err := s.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.applyAcademic(ctx, adminID, student, input, domain.ActionStudentDepartmentSet)
}

func validateAcademic(input domain.UpdateStudentDetailsInput) error {
	if input.Empty() {
		return domain.Invalidf("no valid fields to update")
	}
	if input.Level != nil && !domain.ValidLevel(*input.Level) {
		return domain.Invalidf("invalid level %d", *input.Level)
	}
	if input.Session != nil && !domain.ValidSession(*input.Session) {
		return domain.Invalidf("invalid session %q, expected YYYY/YYYY", *input.Session)
	}
	if input.Department != nil && strings.TrimSpace(*input.Department) == "" {
		return domain.Invalidf("department is required")
	}
	return nil
}

type academicChange struct {
	level      bool
	session    bool
	semester   bool
	department bool
}

func (c academicChange) none() bool {
	return !c.level && !c.session && !c.semester && !c.department
}

// applyAcademic writes input onto student, which the caller has loaded and
// validated.
func (s *service) applyAcademic(ctx context.Context, adminID uuid.UUID, student *domain.Student, input domain.UpdateStudentDetailsInput, action string) (*domain.Student, error) {
	var changed academicChange
	if input.Level != nil && *input.Level != student.Level {
		student.Level = *input.Level
		changed.level = true
		if input.Session == nil {
			session := domain.CurrentSession(s.now())
			input.Session = &session
		}
	}
	if input.Session != nil && *input.Session != student.Session {
		student.Session = *input.Session
		changed.session = true
	}
	if input.Semester != nil && *input.Semester != student.Semester {
		student.Semester = *input.Semester
		changed.semester = true
	}
	if input.Department != nil {
		if dept := strings.TrimSpace(*input.Department); dept != student.Department {
			student.Department = dept
			changed.department = true
		}
	}
	if changed.none() {
		return student, nil
	}

	if changed.level || changed.session {
		paid, err := s.paymentRepo.HasVerifiedPayment(ctx, student.ID, student.Level, student.Session)
		if err != nil {
			return nil, fmt.Errorf("check payment status: %w", err)
		}
		student.PaymentStatus = domain.StudentPending
		if paid {
			student.PaymentStatus = domain.StudentPaid
		}
	}

	if err := s.studentRepo.UpdateAcademic(ctx, student); err != nil {
		return nil, fmt.Errorf("update student details: %w", err)
	}

	s.logger.Info("student details updated", "student_id", student.ID, "admin_id", adminID, "action", action,
		"level", student.Level, "session", student.Session, "department", student.Department)
	s.announce(*student, changed)

	entry := domain.RecordActivityInput{
		ActorRole:  domain.RoleAdmin,
		ActorID:    adminID,
		Action:     action,
		EntityType: "student",
		EntityID:   student.ID,
		Detail: map[string]any{
			"level":      student.Level,
			"session":    student.Session,
			"semester":   student.Semester,
			"department": student.Department,
		},
	}
	s.dispatcher.Go("activity."+strings.ReplaceAll(action, ".", "_"), func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, entry)
	})
	return student, nil
}

// announce tells the student about each change through notifications and,
// for level and department moves, email.
func (s *service) announce(student domain.Student, changed academicChange) {
	to := domain.ToStudent(student.ID)
	name, addr := student.FullName(), student.Email

	if changed.level {
		s.dispatcher.Go("notify.student_level", notification.Task(s.notifier,
			fmt.Sprintf("Hello %s, welcome to %d level.", student.FirstName, student.Level), domain.NotifInfo, to))
		s.dispatcher.Go("email.student_level", func(ctx context.Context) error {
			return s.emailSvc.SendLevelChange(ctx, addr, name, student.Level, student.Session)
		})
	}
	if (changed.level || changed.session) && student.PaymentStatus != domain.StudentPaid {
		s.dispatcher.Go("notify.student_payment_pending", notification.Task(s.notifier,
			fmt.Sprintf("Payment is pending for %d level (%s). Please complete your payment to gain full access.",
				student.Level, student.Session),
			domain.NotifWarning, to))
	}
	if changed.semester {
		s.dispatcher.Go("notify.student_semester", notification.Task(s.notifier,
			fmt.Sprintf("Hello %s, welcome to %s semester.", student.FirstName, student.Semester), domain.NotifInfo, to))
	}
	if changed.department {
		s.dispatcher.Go("notify.student_department", notification.Task(s.notifier,
			fmt.Sprintf("Your department has been changed to %s.", student.Department), domain.NotifInfo, to))
		s.dispatcher.Go("email.student_department", func(ctx context.Context) error {
			return s.emailSvc.SendDepartmentChange(ctx, addr, name, student.Department)
		})
	}
}

// Delete removes a student. Students with payment records are kept so the
// payment history stays intact.
func (s *service) Delete(ctx context.Context, adminID, studentID uuid.UUID) error {
	student, err := s.Profile(ctx, studentID)
	if err != nil {
		return err
	}

	deleted, err := s.studentRepo.Delete(ctx, studentID)
	if errors.Is(err, repository.ErrReferenced) {
		return domain.Conflictf("student has payment records and cannot be deleted")
	}
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if !deleted {
		return domain.NotFoundf("student %s not found", studentID)
	}

	s.logger.Info("student deleted", "student_id", studentID, "admin_id", adminID)
	number := student.StudentNumber
	s.dispatcher.Go("activity.student_deleted", func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  domain.RoleAdmin,
			ActorID:    adminID,
			Action:     domain.ActionStudentDeleted,
			EntityType: "student",
			EntityID:   studentID,
			Detail:     map[string]any{"student_number": number},
		})
	})
	return nil
}
