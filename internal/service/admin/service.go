package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/auth"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
	"school-portal/internal/service/storage"
)

type Service interface {
	Register(ctx context.Context, input domain.RegisterAdminInput) (*domain.AuthResponse[domain.Admin], error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Admin], error)
	Profile(ctx context.Context, id uuid.UUID) (*domain.Admin, error)
	UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateAdminProfileInput) (*domain.Admin, error)
}

type service struct {
	adminRepo   repository.AdminRepository
	authSvc     auth.Service
	storageSvc  storage.Service
	emailSvc    email.Service
	activitySvc activity.Service
	dispatcher  *dispatch.Dispatcher
	logger      *slog.Logger
}

func NewService(
	adminRepo repository.AdminRepository,
	authSvc auth.Service,
	storageSvc storage.Service,
	emailSvc email.Service,
	activitySvc activity.Service,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) Service {
	return &service{
		adminRepo:   adminRepo,
		authSvc:     authSvc,
		storageSvc:  storageSvc,
		emailSvc:    emailSvc,
		activitySvc: activitySvc,
		dispatcher:  dispatcher,
		logger:      logger.With("component", "admin"),
	}
}

func (s *service) Register(ctx context.Context, input domain.RegisterAdminInput) (*domain.AuthResponse[domain.Admin], error) {
	addr := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.adminRepo.ExistsByEmail(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("check admin email: %w", err)
	}
	if exists {
		return nil, domain.Conflictf("email already registered")
	}

	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        addr,
		Gender:       input.Gender,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: hash,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.Conflictf("email already registered")
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	s.logger.Info("admin registered", "admin_id", admin.ID)
	s.dispatcher.Go("email.admin_welcome", func(ctx context.Context) error {
		return s.emailSvc.SendAdminWelcome(ctx, admin.Email, admin.FullName())
	})

	return s.authResponse(admin)
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResponse[domain.Admin], error) {
	admin, err := s.adminRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if admin == nil || !s.authSvc.CheckPassword(admin.PasswordHash, input.Password) {
		return nil, domain.Unauthorizedf("invalid email or password")
	}
	return s.authResponse(admin)
}

func (s *service) authResponse(admin *domain.Admin) (*domain.AuthResponse[domain.Admin], error) {
	token, err := s.authSvc.IssueToken(domain.Principal{Role: domain.RoleAdmin, ID: admin.ID})
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse[domain.Admin]{Account: *admin, Token: *token}, nil
}

func (s *service) Profile(ctx context.Context, id uuid.UUID) (*domain.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, domain.NotFoundf("admin %s not found", id)
	}
	return admin, nil
}

func (s *service) UpdatePhoto(ctx context.Context, id uuid.UUID, localPath string) (string, error) {
	url, err := s.storageSvc.Upload(ctx, localPath, storage.FolderPhotos)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	if err := s.adminRepo.UpdatePhoto(ctx, id, url); err != nil {
		return "", fmt.Errorf("save photo: %w", err)
	}
	return url, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input domain.UpdateAdminProfileInput) (*domain.Admin, error) {
	if input.Empty() {
		return nil, domain.Invalidf("no valid fields to update")
	}

	admin, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&admin.FirstName, input.FirstName)
	set(&admin.LastName, input.LastName)
	set(&admin.Gender, input.Gender)
	set(&admin.PhoneNumber, input.PhoneNumber)

	if err := s.adminRepo.UpdateProfile(ctx, admin); err != nil {
		return nil, fmt.Errorf("update admin profile: %w", err)
	}

	s.dispatcher.Go("activity.admin_profile_updated", func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  domain.RoleAdmin,
			ActorID:    admin.ID,
			Action:     domain.ActionAdminProfileUpdated,
			EntityType: "admin",
			EntityID:   admin.ID,
		})
	})
	return admin, nil
}
