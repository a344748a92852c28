package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
)

type StorageService struct {
	mock.Mock
}

func (m *StorageService) Upload(ctx context.Context, localPath, folder string) (string, error) {
	args := m.Called(ctx, localPath, folder)
	return args.String(0), args.Error(1)
}

type GatewayClient struct {
	mock.Mock
}

func (m *GatewayClient) VerifyTransaction(ctx context.Context, reference string) (*domain.GatewayTransaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GatewayTransaction), args.Error(1)
}

type AuthService struct {
	mock.Mock
}

func (m *AuthService) IssueToken(principal domain.Principal) (*domain.TokenResponse, error) {
	args := m.Called(principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenResponse), args.Error(1)
}

func (m *AuthService) Resolve(token string) (*domain.Principal, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Principal), args.Error(1)
}

func (m *AuthService) HashPassword(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *AuthService) CheckPassword(hash, password string) bool {
	args := m.Called(hash, password)
	return args.Bool(0)
}
