package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
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

const numberAttempts = 5

type Service interface {
	Register(ctx context.Context, input domain.RegisterStudentInput) (*domain.AuthResponse[domain.Student], error)
	Login(ctx context.Context, input domain.StudentLoginInput) (*domain.AuthResponse[domain.Student], error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.Student, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateStudentProfileInput) (*domain.Student, error)
	MissingProfileFields(ctx context.Context, id uuid.UUID) ([]string, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error)
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Student], error)

	// UpdateDetails applies an administrator's change of level, semester,
	// department or session. A level or session change recomputes the
	// student's payment status for the new period.
	UpdateDetails(ctx context.Context, adminID, studentID uuid.UUID, input domain.UpdateStudentDetailsInput) (*domain.Student, error)
	// Promote moves the student up one level into the current session.
	Promote(ctx context.Context, adminID, studentID uuid.UUID) (*domain.Student, error)
	ChangeDepartment(ctx context.Context, adminID, studentID uuid.UUID, department string) (*domain.Student, error)
	Delete(ctx context.Context, adminID, studentID uuid.UUID) error
}

type service struct {
	studentRepo repository.StudentRepository
	paymentRepo repository.PaymentRepository
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
	StudentRepo repository.StudentRepository
	PaymentRepo repository.PaymentRepository
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
		studentRepo: d.StudentRepo,
		paymentRepo: d.PaymentRepo,
		authSvc:     d.AuthSvc,
		storageSvc:  d.StorageSvc,
		notifier:    d.Notifier,
		emailSvc:    d.EmailSvc,
		activitySvc: d.ActivitySvc,
		dispatcher:  d.Dispatcher,
		logger:      d.Logger.With("component", "student"),
		now:         time.Now,
	}
}

// numberPrefix builds "EES/<yy>/<yy+1>/" from a "YYYY/YYYY" session.
func numberPrefix(session string) string {
	start, _ := strconv.Atoi(session[:4])
	return fmt.Sprintf("EES/%02d/%02d/", start%100, (start+1)%100)
}

func (s *service) Register(ctx context.Context, input domain.RegisterStudentInput) (*domain.AuthResponse[domain.Student], error) {
	addr := strings.ToLower(strings.TrimSpace(input.Email))
	exists, err := s.studentRepo.ExistsByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("check student email: %w", err)
	}
	if exists {
		return nil, domain.Conflictf("email already registered")
	}

	session := input.Session
	if session == "" {
		session = domain.CurrentSession(s.now())
	}
	if !domain.ValidSession(session) {
		return nil, domain.Invalidf("invalid session %q, expected YYYY/YYYY", session)
	}

	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	student := &domain.Student{
		ID:            uuid.New(),
		FirstName:     strings.TrimSpace(input.FirstName),
		LastName:      strings.TrimSpace(input.LastName),
		Email:         addr,
		Department:    input.Department,
		Level:         input.Level,
		Semester:      input.Semester,
		Session:       session,
		PaymentStatus: domain.StudentNotApplicable,
		PasswordHash:  hash,
	}
	if err := s.create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student registered", "student_id", student.ID, "student_number", student.StudentNumber)

	name, number := student.FullName(), student.StudentNumber
	s.dispatcher.Go("email.student_welcome", func(ctx context.Context) error {
		return s.emailSvc.SendStudentWelcome(ctx, addr, name, number)
	})

	token, err := s.authSvc.IssueToken(domain.Principal{Role: domain.RoleStudent, ID: student.ID})
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse[domain.Student]{Account: *student, Token: *token}, nil
}

// create allocates the next student number under the session prefix. A
// unique violation on the number means a concurrent registration won it, so
// the next sequence is tried.
func (s *service) create(ctx context.Context, student *domain.Student) error {
	prefix := numberPrefix(student.Session)

	for attempt := 0; attempt < numberAttempts; attempt++ {
		count, err := s.studentRepo.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("count student numbers: %w", err)
		}
		student.StudentNumber = fmt.Sprintf("%s%04d", prefix, count+1+int64(attempt))

		err = s.studentRepo.Create(ctx, student)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("create student: %w", err)
		}

		exists, lookupErr := s.studentRepo.ExistsByEmail(ctx, student.Email)
		if lookupErr != nil {
			return fmt.Errorf("check student email: %w", lookupErr)
		}
		if exists {
			return domain.Conflictf("email already registered")
		}
	}
	return domain.Conflictf("could not allocate a student number, try again")
}

func (s *service) Login(ctx context.Context, input domain.StudentLoginInput) (*domain.AuthResponse[domain.Student], error) {
	student, err := s.studentRepo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(input.StudentNumber)))
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil || !s.authSvc.CheckPassword(student.PasswordHash, input.Password) {
		return nil, domain.Unauthorizedf("invalid student number or password")
	}

	token, err := s.authSvc.IssueToken(domain.Principal{Role: domain.RoleStudent, ID: student.ID})
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse[domain.Student]{Account: *student, Token: *token}, nil
}

func (s *service) Profile(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, domain.NotFoundf("student %s not found", id)
	}
	return student, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateStudentProfileInput) (*domain.Student, error) {
	student, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Session != nil && !domain.ValidSession(*input.Session) {
		return nil, domain.Invalidf("invalid session %q, expected YYYY/YYYY", *input.Session)
	}
	if input.Level != nil && !domain.ValidLevel(*input.Level) {
		return nil, domain.Invalidf("invalid level %d", *input.Level)
	}

	setString := func(dst **string, v *string) {
		if v != nil {
			trimmed := strings.TrimSpace(*v)
			*dst = &trimmed
		}
	}
	setString(&student.PhoneNumber, input.PhoneNumber)
	setString(&student.Gender, input.Gender)
	setString(&student.MaritalStatus, input.MaritalStatus)
	setString(&student.Nationality, input.Nationality)
	setString(&student.StateOfOrigin, input.StateOfOrigin)
	setString(&student.Address, input.Address)
	if input.Age != nil {
		student.Age = input.Age
	}
	if input.DateOfBirth != nil {
		student.DateOfBirth = input.DateOfBirth
	}
	if input.Level != nil {
		student.Level = *input.Level
	}
	if input.Semester != nil {
		student.Semester = *input.Semester
	}
	if input.Session != nil {
		student.Session = *input.Session
	}

	if err := s.studentRepo.UpdateProfile(ctx, student); err != nil {
		return nil, fmt.Errorf("update student profile: %w", err)
	}
	return student, nil
}

func (s *service) MissingProfileFields(ctx context.Context, id uuid.UUID) ([]string, error) {
	student, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	missing := student.MissingProfileFields()
	if missing == nil {
		missing = []string{}
	}
	return missing, nil
}

func (s *service) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	url, err := s.storageSvc.Upload(ctx, localPath, storage.FolderPhotos)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.studentRepo.UpdatePhoto(ctx, id, url); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return url, nil
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Student], error) {
	params.Validate()

	students, total, err := s.studentRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Student]{}, err
	}
	return domain.NewPaginatedResponse(students, params, total), nil
}
