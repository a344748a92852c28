package password

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"school-portal/internal/domain"
	"school-portal/internal/mocks"
	"school-portal/internal/service/dispatch"
)

type memoryCodes struct {
	mu       sync.Mutex
	codes    map[string]string
	attempts map[string]int64
	ttls     map[string]time.Duration
}

func newMemoryCodes() *memoryCodes {
	return &memoryCodes{
		codes:    map[string]string{},
		attempts: map[string]int64{},
		ttls:     map[string]time.Duration{},
	}
}

func (m *memoryCodes) Save(_ context.Context, key, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[key] = code
	m.attempts[key] = 0
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCodes) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[key], nil
}

func (m *memoryCodes) Miss(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[key]++
	return m.attempts[key], nil
}

func (m *memoryCodes) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.codes, key)
	delete(m.attempts, key)
	return nil
}

type fixture struct {
	adminRepo   *mocks.AdminRepository
	teacherRepo *mocks.TeacherRepository
	studentRepo *mocks.StudentRepository
	authSvc     *mocks.AuthService
	emailSvc    *mocks.EmailService
	activitySvc *mocks.ActivityService
	dispatcher  *dispatch.Dispatcher
	codes       *memoryCodes
	svc         *service
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f := &fixture{
		adminRepo:   new(mocks.AdminRepository),
		teacherRepo: new(mocks.TeacherRepository),
		studentRepo: new(mocks.StudentRepository),
		authSvc:     new(mocks.AuthService),
		emailSvc:    new(mocks.EmailService),
		activitySvc: new(mocks.ActivityService),
		dispatcher:  dispatch.New(logger, nil, time.Second),
		codes:       newMemoryCodes(),
	}
	f.svc = newService(Deps{
		AdminRepo:   f.adminRepo,
		TeacherRepo: f.teacherRepo,
		StudentRepo: f.studentRepo,
		AuthSvc:     f.authSvc,
		EmailSvc:    f.emailSvc,
		ActivitySvc: f.activitySvc,
		Dispatcher:  f.dispatcher,
		Logger:      logger,
	}, f.codes)
	f.svc.newCode = func() (string, error) { return "482913", nil }
	f.activitySvc.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func student() *domain.Student {
	return &domain.Student{
		ID: uuid.New(), FirstName: "Tunde", LastName: "Bello",
		Email: "tunde@school.test", PasswordHash: "old-hash",
	}
}

func TestRandomCode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', code)
		}
	}
}

func TestForgot(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a code and emails it", func(t *testing.T) {
		f := newFixture()
		st := student()
		f.studentRepo.On("GetByEmail", ctx, "tunde@school.test").Return(st, nil).Once()
		f.emailSvc.On("SendPasswordReset", mock.Anything, "tunde@school.test", "Tunde Bello", "482913", CodeTTL).
			Return(nil).Once()

		require.NoError(t, f.svc.Forgot(ctx, domain.RoleStudent, "  Tunde@School.test "))
		f.dispatcher.Wait()

		key := codeKey(domain.RoleStudent, "tunde@school.test")
		assert.Equal(t, "482913", f.codes.codes[key])
		assert.Equal(t, CodeTTL, f.codes.ttls[key])
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("unknown address succeeds without a code", func(t *testing.T) {
		f := newFixture()
		f.teacherRepo.On("GetByEmail", ctx, "nobody@school.test").Return(nil, nil).Once()

		require.NoError(t, f.svc.Forgot(ctx, domain.RoleTeacher, "nobody@school.test"))
		f.dispatcher.Wait()

		assert.Empty(t, f.codes.codes)
		f.emailSvc.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("codes are scoped by role", func(t *testing.T) {
		f := newFixture()
		admin := &domain.Admin{ID: uuid.New(), FirstName: "Grace", Email: "grace@school.test"}
		f.adminRepo.On("GetByEmail", ctx, "grace@school.test").Return(admin, nil).Once()
		f.emailSvc.On("SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		require.NoError(t, f.svc.Forgot(ctx, domain.RoleAdmin, "grace@school.test"))
		f.dispatcher.Wait()

		err := f.svc.VerifyCode(ctx, domain.RoleTeacher, "grace@school.test", "482913")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
		assert.NoError(t, f.svc.VerifyCode(ctx, domain.RoleAdmin, "grace@school.test", "482913"))
	})

	t.Run("without a code store the flow is unavailable", func(t *testing.T) {
		f := newFixture()
		f.svc.codes = nil

		err := f.svc.Forgot(ctx, domain.RoleStudent, "tunde@school.test")
		assert.True(t, domain.IsKind(err, domain.KindUnprocessable))
	})
}

func TestVerifyCode(t *testing.T) {
	ctx := context.Background()
	key := codeKey(domain.RoleStudent, "tunde@school.test")

	t.Run("matching code", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.codes.Save(ctx, key, "123456", CodeTTL))

		assert.NoError(t, f.svc.VerifyCode(ctx, domain.RoleStudent, "TUNDE@school.test", "123456"))
		assert.Equal(t, "123456", f.codes.codes[key], "verifying does not consume the code")
	})

	t.Run("no code issued", func(t *testing.T) {
		f := newFixture()
		err := f.svc.VerifyCode(ctx, domain.RoleStudent, "tunde@school.test", "123456")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
	})

	t.Run("code is discarded after repeated misses", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.codes.Save(ctx, key, "123456", CodeTTL))

		for i := 0; i < maxAttempts; i++ {
			err := f.svc.VerifyCode(ctx, domain.RoleStudent, "tunde@school.test", "000000")
			assert.True(t, domain.IsKind(err, domain.KindInvalid))
		}

		err := f.svc.VerifyCode(ctx, domain.RoleStudent, "tunde@school.test", "123456")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	key := codeKey(domain.RoleStudent, "tunde@school.test")

	t.Run("sets the new password and consumes the code", func(t *testing.T) {
		f := newFixture()
		st := student()
		require.NoError(t, f.codes.Save(ctx, key, "123456", CodeTTL))
		f.studentRepo.On("GetByEmail", ctx, "tunde@school.test").Return(st, nil).Once()
		f.authSvc.On("HashPassword", "brand-new-pass").Return("new-hash", nil).Once()
		f.studentRepo.On("UpdatePassword", ctx, st.ID, "new-hash").Return(nil).Once()

		require.NoError(t, f.svc.Reset(ctx, domain.RoleStudent, "tunde@school.test", "123456", "brand-new-pass"))
		f.dispatcher.Wait()

		f.studentRepo.AssertExpectations(t)
		assert.Empty(t, f.codes.codes[key])

		err := f.svc.Reset(ctx, domain.RoleStudent, "tunde@school.test", "123456", "again-pass")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
	})

	t.Run("wrong code leaves the password alone", func(t *testing.T) {
		f := newFixture()
		require.NoError(t, f.codes.Save(ctx, key, "123456", CodeTTL))

		err := f.svc.Reset(ctx, domain.RoleStudent, "tunde@school.test", "654321", "brand-new-pass")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
		f.studentRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestChange(t *testing.T) {
	ctx := context.Background()

	t.Run("teacher changes password", func(t *testing.T) {
		f := newFixture()
		tc := &domain.Teacher{ID: uuid.New(), FirstName: "Ada", Email: "ada@school.test", PasswordHash: "old-hash"}
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.authSvc.On("CheckPassword", "old-hash", "old-pass").Return(true).Once()
		f.authSvc.On("HashPassword", "new-password").Return("new-hash", nil).Once()
		f.teacherRepo.On("UpdatePassword", ctx, tc.ID, "new-hash").Return(nil).Once()
		f.activitySvc.ExpectedCalls = nil
		f.activitySvc.On("Record", mock.Anything, mock.MatchedBy(func(in domain.RecordActivityInput) bool {
			return in.Action == domain.ActionPasswordChanged && in.ActorID == tc.ID && in.EntityType == "teacher"
		})).Return(nil).Once()

		err := f.svc.Change(ctx, domain.Principal{Role: domain.RoleTeacher, ID: tc.ID}, "old-pass", "new-password")
		require.NoError(t, err)
		f.dispatcher.Wait()

		f.teacherRepo.AssertExpectations(t)
		f.activitySvc.AssertExpectations(t)
	})

	t.Run("incorrect current password", func(t *testing.T) {
		f := newFixture()
		admin := &domain.Admin{ID: uuid.New(), PasswordHash: "old-hash"}
		f.adminRepo.On("GetByID", ctx, admin.ID).Return(admin, nil).Once()
		f.authSvc.On("CheckPassword", "old-hash", "guess").Return(false).Once()

		err := f.svc.Change(ctx, domain.Principal{Role: domain.RoleAdmin, ID: admin.ID}, "guess", "new-password")
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
		f.adminRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing account", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.studentRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

		err := f.svc.Change(ctx, domain.Principal{Role: domain.RoleStudent, ID: id}, "a", "new-password")
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}
