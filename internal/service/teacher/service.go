package teacher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/auth"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
	"school-portal/internal/service/notification"
	"school-portal/internal/service/storage"
)

const staffNumberAttempts = 5

type Service interface {
	Register(ctx context.Context, input domain.RegisterTeacherInput, cvPath, certificatePath string) (*domain.Teacher, error)
	// Login only admits approved teachers.
	Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Teacher], error)
	Approve(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error)
	Reject(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error)
	List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.Teacher], error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.Teacher, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateTeacherProfileInput) (*domain.Teacher, error)
	UpdateDepartment(ctx context.Context, adminID, teacherID uuid.UUID, department string) (*domain.Teacher, error)
	Delete(ctx context.Context, adminID, teacherID uuid.UUID) error
}

type service struct {
	teacherRepo repository.TeacherRepository
	authSvc     auth.Service
	storageSvc  storage.Service
	notifier    notification.Service
	emailSvc    email.Service
	activitySvc activity.Service
	dispatcher  *dispatch.Dispatcher
	logger      *slog.Logger
	now         func() time.Time
}

type Deps struct {
	TeacherRepo repository.TeacherRepository
	AuthSvc     auth.Service
	StorageSvc  storage.Service
	Notifier    notification.Service
	EmailSvc    email.Service
	ActivitySvc activity.Service
	Dispatcher  *dispatch.Dispatcher
	Logger      *slog.Logger
}

func NewService(d Deps) Service {
	return &service{
		teacherRepo: d.TeacherRepo,
		authSvc:     d.AuthSvc,
		storageSvc:  d.StorageSvc,
		notifier:    d.Notifier,
		emailSvc:    d.EmailSvc,
		activitySvc: d.ActivitySvc,
		dispatcher:  d.Dispatcher,
		logger:      d.Logger.With("component", "teacher"),
		now:         time.Now,
	}
}

func (s *service) Register(ctx context.Context, input domain.RegisterTeacherInput, cvPath, certificatePath string) (*domain.Teacher, error) {
	defer os.Remove(cvPath)
	defer os.Remove(certificatePath)

	addr := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.teacherRepo.ExistsByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("check teacher email: %w", err)
	}
	if exists {
		return nil, domain.Conflictf("email already registered")
	}

	cvURL, err := s.storageSvc.Upload(ctx, cvPath, storage.FolderCredentials)
	if err != nil {
		return nil, fmt.Errorf("upload cv: %w", err)
	}
	certificateURL, err := s.storageSvc.Upload(ctx, certificatePath, storage.FolderCredentials)
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}

	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	teacher := &domain.Teacher{
		ID:             uuid.New(),
		Title:          input.Title,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Email:          addr,
		PhoneNumber:    input.PhoneNumber,
		Department:     input.Department,
		Status:         domain.TeacherPending,
		CVURL:          &cvURL,
		CertificateURL: &certificateURL,
		PasswordHash:   hash,
	}
	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Conflictf("email already registered")
		}
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.logger.Info("teacher registered", "teacher_id", teacher.ID, "department", teacher.Department)

	name := teacher.FullName()
	s.dispatcher.Go("email.teacher_registered", func(ctx context.Context) error {
		return s.emailSvc.SendTeacherRegistered(ctx, name, addr, teacher.Department)
	})
	s.dispatcher.Go("notify.teacher_registered", notification.Task(s.notifier,
		fmt.Sprintf("New teacher registration: %s (%s) is awaiting approval.", name, teacher.Department),
		domain.NotifInfo, domain.Broadcast(domain.RoleAdmin)))

	return teacher, nil
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Teacher], error) {
	teacher, err := s.teacherRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if teacher == nil || !s.authSvc.CheckPassword(teacher.PasswordHash, input.Password) {
		return nil, domain.Unauthorizedf("invalid email or password")
	}
	if teacher.Status != domain.TeacherApproved {
		return nil, domain.Forbiddenf("account is %s, sign-in opens after approval", teacher.Status)
	}

	token, err := s.authSvc.IssueToken(domain.Principal{Role: domain.RoleTeacher, ID: teacher.ID})
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse[domain.Teacher]{Account: *teacher, Token: *token}, nil
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*domain.Teacher, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load teacher: %w", err)
	}
	if teacher == nil {
		return nil, domain.NotFoundf("teacher %s not found", id)
	}
	return teacher, nil
}

func (s *service) Approve(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error) {
	teacher, err := s.get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.IsApproved {
		return nil, domain.Conflictf("teacher already approved")
	}

	teacher.Status = domain.TeacherApproved
	teacher.IsApproved = true
	if err := s.assignStaffNumber(ctx, teacher); err != nil {
		return nil, err
	}

	s.logger.Info("teacher approved", "teacher_id", teacher.ID, "staff_number", *teacher.StaffNumber, "admin_id", adminID)

	staffNumber, name, addr := *teacher.StaffNumber, teacher.FullName(), teacher.Email
	s.dispatcher.Go("notify.teacher_approved_admin", notification.Task(s.notifier,
		fmt.Sprintf("You approved Staff %s", teacher.FirstName), domain.NotifInfo, domain.ToAdmin(adminID)))
	s.dispatcher.Go("notify.teacher_approved", notification.Task(s.notifier,
		fmt.Sprintf("Your account has been approved by the School Administration. Your ID is %s", staffNumber),
		domain.NotifSuccess, domain.ToTeacher(teacher.ID)))
	s.dispatcher.Go("notify.teacher_profile_prompt", notification.Task(s.notifier,
		"Please update your profile before accessing the full dashboard.",
		domain.NotifWarning, domain.ToTeacher(teacher.ID)))
	s.dispatcher.Go("email.teacher_approved", func(ctx context.Context) error {
		return s.emailSvc.SendTeacherApproved(ctx, addr, name, staffNumber)
	})
	s.recordActivity(domain.RoleAdmin, adminID, domain.ActionTeacherApproved, teacher.ID, map[string]any{"staff_number": staffNumber})

	return teacher, nil
}

// assignStaffNumber allocates TCH/<year>/<seq> and retries when a concurrent
// approval took the same sequence.
func (s *service) assignStaffNumber(ctx context.Context, teacher *domain.Teacher) error {
	prefix := fmt.Sprintf("TCH/%d/", s.now().Year())

	for attempt := 0; attempt < staffNumberAttempts; attempt++ {
		count, err := s.teacherRepo.CountByStaffPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("count staff numbers: %w", err)
		}
		number := fmt.Sprintf("%s%04d", prefix, count+1+int64(attempt))
		teacher.StaffNumber = &number

		err = s.teacherRepo.UpdateStatus(ctx, teacher)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("approve teacher: %w", err)
		}
	}
	return domain.Conflictf("could not allocate a staff number, try again")
}

func (s *service) Reject(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error) {
	teacher, err := s.get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if teacher.IsApproved {
		return nil, domain.Conflictf("cannot reject an already approved teacher")
	}

	teacher.Status = domain.TeacherRejected
	if err := s.teacherRepo.UpdateStatus(ctx, teacher); err != nil {
		return nil, fmt.Errorf("reject teacher: %w", err)
	}

	s.logger.Info("teacher rejected", "teacher_id", teacher.ID, "admin_id", adminID)

	name, addr := teacher.FullName(), teacher.Email
	s.dispatcher.Go("notify.teacher_rejected_admin", notification.Task(s.notifier,
		fmt.Sprintf("You rejected Staff %s", teacher.FirstName), domain.NotifInfo, domain.ToAdmin(adminID)))
	s.dispatcher.Go("notify.teacher_rejected", notification.Task(s.notifier,
		"Your account has been rejected by the School Administration.",
		domain.NotifError, domain.ToTeacher(teacher.ID)))
	s.dispatcher.Go("email.teacher_rejected", func(ctx context.Context) error {
		return s.emailSvc.SendTeacherRejected(ctx, addr, name)
	})
	s.recordActivity(domain.RoleAdmin, adminID, domain.ActionTeacherRejected, teacher.ID, nil)

	return teacher, nil
}

func (s *service) recordActivity(actorRole domain.Role, actorID uuid.UUID, action string, teacherID uuid.UUID, detail any) {
	s.dispatcher.Go("activity."+strings.ReplaceAll(action, ".", "_"), func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  actorRole,
			ActorID:    actorID,
			Action:     action,
			EntityType: "teacher",
			EntityID:   teacherID,
			Detail:     detail,
		})
	})
}

func (s *service) List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.Teacher], error) {
	params.Validate()

	teachers, total, err := s.teacherRepo.List(ctx, status, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Teacher]{}, err
	}
	return domain.NewPaginatedResponse(teachers, params, total), nil
}

func (s *service) Profile(ctx context.Context, id uuid.UUID) (*domain.Teacher, error) {
	return s.get(ctx, id)
}

func (s *service) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	url, err := s.storageSvc.Upload(ctx, localPath, storage.FolderPhotos)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.teacherRepo.UpdatePhoto(ctx, id, url); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return url, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateTeacherProfileInput) (*domain.Teacher, error) {
	if input.Empty() {
		return nil, domain.Invalidf("no valid fields to update")
	}

	teacher, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&teacher.Title, input.Title)
	set(&teacher.FirstName, input.FirstName)
	set(&teacher.LastName, input.LastName)
	set(&teacher.PhoneNumber, input.PhoneNumber)
	set(&teacher.Department, input.Department)

	if err := s.teacherRepo.UpdateProfile(ctx, teacher); err != nil {
		return nil, fmt.Errorf("update teacher profile: %w", err)
	}

	s.recordActivity(domain.RoleTeacher, teacher.ID, domain.ActionTeacherProfileUpdated, teacher.ID, nil)
	return teacher, nil
}

func (s *service) UpdateDepartment(ctx context.Context, adminID, teacherID uuid.UUID, department string) (*domain.Teacher, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, domain.Invalidf("department is required")
	}

	teacher, err := s.get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	previous := teacher.Department
	teacher.Department = department

	if err := s.teacherRepo.UpdateProfile(ctx, teacher); err != nil {
		return nil, fmt.Errorf("update teacher department: %w", err)
	}

	s.logger.Info("teacher department updated", "teacher_id", teacher.ID, "department", department, "admin_id", adminID)
	s.dispatcher.Go("notify.teacher_department", notification.Task(s.notifier,
		"Your department information has been updated.", domain.NotifInfo, domain.ToTeacher(teacher.ID)))
	s.recordActivity(domain.RoleAdmin, adminID, domain.ActionTeacherDepartmentSet, teacher.ID,
		map[string]any{"from": previous, "to": department})

	return teacher, nil
}

func (s *service) Delete(ctx context.Context, adminID, teacherID uuid.UUID) error {
	teacher, err := s.get(ctx, teacherID)
	if err != nil {
		return err
	}

	deleted, err := s.teacherRepo.Delete(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	if !deleted {
		return domain.NotFoundf("teacher %s not found", teacherID)
	}

	s.logger.Info("teacher deleted", "teacher_id", teacherID, "admin_id", adminID)
	s.dispatcher.Go("notify.teacher_deleted", notification.Task(s.notifier,
		"Your account has been deleted by the School Administration.", domain.NotifError, domain.ToTeacher(teacherID)))
	s.recordActivity(domain.RoleAdmin, adminID, domain.ActionTeacherDeleted, teacherID,
		map[string]any{"email": teacher.Email})
	return nil
}
