package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type TeacherRepository struct {
	mock.Mock
}

func (m *TeacherRepository) Create(ctx context.Context, teacher *domain.Teacher) error {
	args := m.Called(ctx, teacher)
	return args.Error(0)
}

func (m *TeacherRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Teacher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Teacher), args.Error(1)
}

func (m *TeacherRepository) GetByEmail(ctx context.Context, email string) (*domain.Teacher, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Teacher), args.Error(1)
}

func (m *TeacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *TeacherRepository) List(ctx context.Context, status *domain.TeacherStatus, params domain.PaginationParams) ([]domain.Teacher, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]domain.Teacher), args.Get(1).(int64), args.Error(2)
}

func (m *TeacherRepository) UpdateStatus(ctx context.Context, teacher *domain.Teacher) error {
	args := m.Called(ctx, teacher)
	return args.Error(0)
}

func (m *TeacherRepository) CountByStaffPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TeacherRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *TeacherRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TeacherRepository) CountApproved(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TeacherRepository) UpdateProfile(ctx context.Context, teacher *domain.Teacher) error {
	args := m.Called(ctx, teacher)
	return args.Error(0)
}

func (m *TeacherRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *TeacherRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
