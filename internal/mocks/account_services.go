package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type AdminService struct {
	mock.Mock
}

func (m *AdminService) Register(ctx context.Context, input domain.RegisterAdminInput) (*domain.AuthResponse[domain.Admin], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse[domain.Admin]), args.Error(1)
}

func (m *AdminService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Admin], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse[domain.Admin]), args.Error(1)
}

func (m *AdminService) Profile(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

func (m *AdminService) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	args := m.Called(ctx, id, localPath)
	return args.String(0), args.Error(1)
}

func (m *AdminService) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateAdminProfileInput) (*domain.Admin, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

type TeacherService struct {
	mock.Mock
}

func (m *TeacherService) teacher(args mock.Arguments) (*domain.Teacher, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Teacher), args.Error(1)
}

func (m *TeacherService) Register(ctx context.Context, input domain.RegisterTeacherInput, cvPath, certificatePath string) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, input, cvPath, certificatePath))
}

func (m *TeacherService) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Teacher], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse[domain.Teacher]), args.Error(1)
}

func (m *TeacherService) Approve(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, adminID, teacherID))
}

func (m *TeacherService) Reject(ctx context.Context, adminID, teacherID uuid.UUID) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, adminID, teacherID))
}

func (m *TeacherService) List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) (domain.PaginatedResponse[domain.Teacher], error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Teacher]), args.Error(1)
}

func (m *TeacherService) Profile(ctx context.Context, id uuid.UUID) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, id))
}

func (m *TeacherService) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	args := m.Called(ctx, id, localPath)
	return args.String(0), args.Error(1)
}

func (m *TeacherService) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateTeacherProfileInput) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, id, input))
}

func (m *TeacherService) UpdateDepartment(ctx context.Context, adminID, teacherID uuid.UUID, department string) (*domain.Teacher, error) {
	return m.teacher(m.Called(ctx, adminID, teacherID, department))
}

func (m *TeacherService) Delete(ctx context.Context, adminID, teacherID uuid.UUID) error {
	return m.Called(ctx, adminID, teacherID).Error(0)
}

type StudentService struct {
	mock.Mock
}

func (m *StudentService) student(args mock.Arguments) (*domain.Student, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

func (m *StudentService) Register(ctx context.Context, input domain.RegisterStudentInput) (*domain.AuthResponse[domain.Student], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse[domain.Student]), args.Error(1)
}

func (m *StudentService) Login(ctx context.Context, input domain.StudentLoginInput) (*domain.AuthResponse[domain.Student], error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResponse[domain.Student]), args.Error(1)
}

func (m *StudentService) Profile(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	return m.student(m.Called(ctx, id))
}

func (m *StudentService) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateStudentProfileInput) (*domain.Student, error) {
	return m.student(m.Called(ctx, id, input))
}

func (m *StudentService) MissingProfileFields(ctx context.Context, id uuid.UUID) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *StudentService) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	args := m.Called(ctx, id, localPath)
	return args.String(0), args.Error(1)
}

func (m *StudentService) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Student], error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.PaginatedResponse[domain.Student]), args.Error(1)
}

func (m *StudentService) UpdateDetails(ctx context.Context, adminID, studentID uuid.UUID, input domain.UpdateStudentDetailsInput) (*domain.Student, error) {
	return m.student(m.Called(ctx, adminID, studentID, input))
}

func (m *StudentService) Promote(ctx context.Context, adminID, studentID uuid.UUID) (*domain.Student, error) {
	return m.student(m.Called(ctx, adminID, studentID))
}

func (m *StudentService) ChangeDepartment(ctx context.Context, adminID, studentID uuid.UUID, department string) (*domain.Student, error) {
	return m.student(m.Called(ctx, adminID, studentID, department))
}

func (m *StudentService) Delete(ctx context.Context, adminID, studentID uuid.UUID) error {
	return m.Called(ctx, adminID, studentID).Error(0)
}
