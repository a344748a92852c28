package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type PasswordService struct {
	mock.Mock
}

func (m *PasswordService) Forgot(ctx context.Context, role domain.Role, addr string) error {
	return m.Called(ctx, role, addr).Error(0)
}

func (m *PasswordService) VerifyCode(ctx context.Context, role domain.Role, addr, code string) error {
	return m.Called(ctx, role, addr, code).Error(0)
}

func (m *PasswordService) Reset(ctx context.Context, role domain.Role, addr, code, newPassword string) error {
	return m.Called(ctx, role, addr, code, newPassword).Error(0)
}

func (m *PasswordService) Change(ctx context.Context, principal domain.Principal, current, next string) error {
	return m.Called(ctx, principal, current, next).Error(0)
}
