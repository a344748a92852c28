// Package password handles password changes for signed-in accounts and the
// emailed-code reset flow for accounts that lost theirs.
package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/auth"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
)

const (
	CodeTTL     = 15 * time.Minute
	maxAttempts = 5
)

type Service interface {
	// Forgot emails a reset code when an account with addr exists. Unknown
	// addresses succeed silently.
	Forgot(ctx context.Context, role domain.Role, addr string) error
	VerifyCode(ctx context.Context, role domain.Role, addr, code string) error
	Reset(ctx context.Context, role domain.Role, addr, code, newPassword string) error
	Change(ctx context.Context, principal domain.Principal, current, next string) error
}

type Deps struct {
	AdminRepo   repository.AdminRepository
	TeacherRepo repository.TeacherRepository
	StudentRepo repository.StudentRepository
	AuthSvc     auth.Service
	EmailSvc    email.Service
	ActivitySvc activity.Service
	Dispatcher  *dispatch.Dispatcher
	Redis       *redis.Client
	Logger      *slog.Logger
}

type service struct {
	adminRepo   repository.AdminRepository
	teacherRepo repository.TeacherRepository
	studentRepo repository.StudentRepository
	authSvc     auth.Service
	emailSvc    email.Service
	activitySvc activity.Service
	dispatcher  *dispatch.Dispatcher
	codes       codeStore
	logger      *slog.Logger
	newCode     func() (string, error)
}

func NewService(deps Deps) Service {
	var codes codeStore
	if deps.Redis != nil {
		codes = &redisCodes{client: deps.Redis}
	} else {
		deps.Logger.Warn("redis unavailable, password reset is disabled")
	}
	return newService(deps, codes)
}

func newService(deps Deps, codes codeStore) *service {
	return &service{
		adminRepo:   deps.AdminRepo,
		teacherRepo: deps.TeacherRepo,
		studentRepo: deps.StudentRepo,
		authSvc:     deps.AuthSvc,
		emailSvc:    deps.EmailSvc,
		activitySvc: deps.ActivitySvc,
		dispatcher:  deps.Dispatcher,
		codes:       codes,
		logger:      deps.Logger.With("component", "password"),
		newCode:     randomCode,
	}
}

// randomCode returns a uniformly drawn six digit code.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// account is the part of an admin, teacher or student record the password
// flows need.
type account struct {
	id    uuid.UUID
	name  string
	email string
	hash  string
}

func (s *service) byEmail(ctx context.Context, role domain.Role, addr string) (*account, error) {
	switch role {
	case domain.RoleAdmin:
		a, err := s.adminRepo.GetByEmail(ctx, addr)
		if err != nil || a == nil {
			return nil, err
		}
		return &account{id: a.ID, name: a.FullName(), email: a.Email, hash: a.PasswordHash}, nil
	case domain.RoleTeacher:
		t, err := s.teacherRepo.GetByEmail(ctx, addr)
		if err != nil || t == nil {
			return nil, err
		}
		return &account{id: t.ID, name: t.FullName(), email: t.Email, hash: t.PasswordHash}, nil
	case domain.RoleStudent:
		st, err := s.studentRepo.GetByEmail(ctx, addr)
		if err != nil || st == nil {
			return nil, err
		}
		return &account{id: st.ID, name: st.FullName(), email: st.Email, hash: st.PasswordHash}, nil
	}
	return nil, domain.Invalidf("unknown role %q", role)
}

func (s *service) byID(ctx context.Context, role domain.Role, id uuid.UUID) (*account, error) {
	switch role {
	case domain.RoleAdmin:
		a, err := s.adminRepo.GetByID(ctx, id)
		if err != nil || a == nil {
			return nil, err
		}
		return &account{id: a.ID, name: a.FullName(), email: a.Email, hash: a.PasswordHash}, nil
	case domain.RoleTeacher:
		t, err := s.teacherRepo.GetByID(ctx, id)
		if err != nil || t == nil {
			return nil, err
		}
		return &account{id: t.ID, name: t.FullName(), email: t.Email, hash: t.PasswordHash}, nil
	case domain.RoleStudent:
		st, err := s.studentRepo.GetByID(ctx, id)
		if err != nil || st == nil {
			return nil, err
		}
		return &account{id: st.ID, name: st.FullName(), email: st.Email, hash: st.PasswordHash}, nil
	}
	return nil, domain.Invalidf("unknown role %q", role)
}

func (s *service) updatePassword(ctx context.Context, role domain.Role, id uuid.UUID, hash string) error {
	switch role {
	case domain.RoleAdmin:
		return s.adminRepo.UpdatePassword(ctx, id, hash)
	case domain.RoleTeacher:
		return s.teacherRepo.UpdatePassword(ctx, id, hash)
	case domain.RoleStudent:
		return s.studentRepo.UpdatePassword(ctx, id, hash)
	}
	return domain.Invalidf("unknown role %q", role)
}

func codeKey(role domain.Role, addr string) string {
	return "password_reset:" + strings.ToLower(string(role)) + ":" + addr
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func (s *service) Forgot(ctx context.Context, role domain.Role, addr string) error {
	if s.codes == nil {
		return domain.Unprocessablef("password reset is temporarily unavailable")
	}
	addr = normalize(addr)

	acct, err := s.byEmail(ctx, role, addr)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		s.logger.Info("password reset requested for unknown address", "role", role)
		return nil
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.codes.Save(ctx, codeKey(role, addr), code, CodeTTL); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	s.logger.Info("password reset code issued", "role", role, "account_id", acct.id)
	name, to := acct.name, acct.email
	s.dispatcher.Go("email.password_reset", func(ctx context.Context) error {
		return s.emailSvc.SendPasswordReset(ctx, to, name, code, CodeTTL)
	})
	return nil
}

// check compares code against the live code for key. Every miss counts
// towards maxAttempts, after which the code is discarded.
func (s *service) check(ctx context.Context, key, code string) error {
	if s.codes == nil {
		return domain.Unprocessablef("password reset is temporarily unavailable")
	}

	stored, err := s.codes.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load reset code: %w", err)
	}
	if stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1 {
		return nil
	}

	if stored != "" {
		misses, err := s.codes.Miss(ctx, key)
		if err != nil {
			return fmt.Errorf("count reset attempts: %w", err)
		}
		if misses >= maxAttempts {
			if err := s.codes.Delete(ctx, key); err != nil {
				s.logger.Warn("failed to discard reset code", "error", err)
			}
		}
	}
	return domain.Invalidf("invalid or expired code")
}

func (s *service) VerifyCode(ctx context.Context, role domain.Role, addr, code string) error {
	return s.check(ctx, codeKey(role, normalize(addr)), code)
}

func (s *service) Reset(ctx context.Context, role domain.Role, addr, code, newPassword string) error {
	addr = normalize(addr)
	key := codeKey(role, addr)
	if err := s.check(ctx, key, code); err != nil {
		return err
	}

	acct, err := s.byEmail(ctx, role, addr)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return domain.Invalidf("invalid or expired code")
	}

	hash, err := s.authSvc.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.updatePassword(ctx, role, acct.id, hash); err != nil {
		return fmt.Errorf("save password: %w", err)
	}
	if err := s.codes.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to discard reset code", "error", err)
	}

	s.logger.Info("password reset", "role", role, "account_id", acct.id)
	s.record(role, acct.id, domain.ActionPasswordReset)
	return nil
}

func (s *service) Change(ctx context.Context, principal domain.Principal, current, next string) error {
	acct, err := s.byID(ctx, principal.Role, principal.ID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		return domain.NotFoundf("account not found")
	}
	if !s.authSvc.CheckPassword(acct.hash, current) {
		return domain.Unauthorizedf("incorrect current password")
	}

	hash, err := s.authSvc.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.updatePassword(ctx, principal.Role, acct.id, hash); err != nil {
		return fmt.Errorf("save password: %w", err)
	}

	s.logger.Info("password changed", "role", principal.Role, "account_id", acct.id)
	s.record(principal.Role, acct.id, domain.ActionPasswordChanged)
	return nil
}

func (s *service) record(role domain.Role, id uuid.UUID, action string) {
	s.dispatcher.Go("activity."+strings.ReplaceAll(action, ".", "_"), func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  role,
			ActorID:    id,
			Action:     action,
			EntityType: strings.ToLower(string(role)),
			EntityID:   id,
		})
	})
}
