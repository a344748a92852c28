package teacher_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"school-portal/internal/domain"
	"school-portal/internal/mocks"
	"school-portal/internal/repository"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/storage"
	"school-portal/internal/service/teacher"
)

type fixture struct {
	teacherRepo *mocks.TeacherRepository
	authSvc     *mocks.AuthService
	storageSvc  *mocks.StorageService
	notifier    *mocks.NotificationService
	emailSvc    *mocks.EmailService
	activitySvc *mocks.ActivityService
	dispatcher  *dispatch.Dispatcher
	svc         teacher.Service
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f := &fixture{
		teacherRepo: new(mocks.TeacherRepository),
		authSvc:     new(mocks.AuthService),
		storageSvc:  new(mocks.StorageService),
		notifier:    new(mocks.NotificationService),
		emailSvc:    new(mocks.EmailService),
		activitySvc: new(mocks.ActivityService),
		dispatcher:  dispatch.New(logger, nil, time.Second),
	}
	f.svc = teacher.NewService(teacher.Deps{
		TeacherRepo: f.teacherRepo,
		AuthSvc:     f.authSvc,
		StorageSvc:  f.storageSvc,
		Notifier:    f.notifier,
		EmailSvc:    f.emailSvc,
		ActivitySvc: f.activitySvc,
		Dispatcher:  f.dispatcher,
		Logger:      logger,
	})
	return f
}

func pendingTeacher() *domain.Teacher {
	return &domain.Teacher{
		ID:         uuid.New(),
		Title:      "Dr",
		FirstName:  "Ada",
		LastName:   "Obi",
		Email:      "ada@school.test",
		Department: "Physics",
		Status:     domain.TeacherPending,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	input := domain.RegisterTeacherInput{
		Title: "Dr", FirstName: "Ada", LastName: "Obi", Email: "Ada@School.test",
		Department: "Physics", Password: "secret-pass",
	}

	t.Run("stores a pending teacher and alerts admins", func(t *testing.T) {
		f := newFixture()
		cv, cert := filepath.Join(t.TempDir(), "cv.pdf"), filepath.Join(t.TempDir(), "cert.pdf")
		f.teacherRepo.On("ExistsByEmail", ctx, "ada@school.test").Return(false, nil).Once()
		f.storageSvc.On("Upload", ctx, cv, storage.FolderCredentials).Return("https://files.test/cv.pdf", nil).Once()
		f.storageSvc.On("Upload", ctx, cert, storage.FolderCredentials).Return("https://files.test/cert.pdf", nil).Once()
		f.authSvc.On("HashPassword", "secret-pass").Return("hashed", nil).Once()
		f.teacherRepo.On("Create", ctx, mock.MatchedBy(func(tc *domain.Teacher) bool {
			return tc.Status == domain.TeacherPending && !tc.IsApproved && tc.StaffNumber == nil
		})).Return(nil).Once()
		f.emailSvc.On("SendTeacherRegistered", mock.Anything, "Dr Ada Obi", "ada@school.test", "Physics").Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, domain.NotifInfo, domain.Broadcast(domain.RoleAdmin)).
			Return(&domain.Notification{}).Once()

		got, err := f.svc.Register(ctx, input, cv, cert)
		require.NoError(t, err)
		require.NotNil(t, got.CVURL)
		assert.Equal(t, "https://files.test/cv.pdf", *got.CVURL)

		f.dispatcher.Wait()
		f.teacherRepo.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("existing email conflicts before uploading", func(t *testing.T) {
		f := newFixture()
		f.teacherRepo.On("ExistsByEmail", ctx, "ada@school.test").Return(true, nil).Once()

		_, err := f.svc.Register(ctx, input, filepath.Join(t.TempDir(), "cv.pdf"), filepath.Join(t.TempDir(), "cert.pdf"))
		assert.True(t, domain.IsKind(err, domain.KindConflict))
		f.storageSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("approved teacher gets a token", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		tc.Status, tc.IsApproved, tc.PasswordHash = domain.TeacherApproved, true, "hashed"
		f.teacherRepo.On("GetByEmail", ctx, "ada@school.test").Return(tc, nil).Once()
		f.authSvc.On("CheckPassword", "hashed", "pw").Return(true).Once()
		f.authSvc.On("IssueToken", domain.Principal{Role: domain.RoleTeacher, ID: tc.ID}).
			Return(&domain.TokenResponse{AccessToken: "tok"}, nil).Once()

		resp, err := f.svc.Login(ctx, domain.LoginInput{Email: "ada@school.test", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token.AccessToken)
	})

	t.Run("pending teacher is forbidden", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		tc.PasswordHash = "hashed"
		f.teacherRepo.On("GetByEmail", ctx, "ada@school.test").Return(tc, nil).Once()
		f.authSvc.On("CheckPassword", "hashed", "pw").Return(true).Once()

		_, err := f.svc.Login(ctx, domain.LoginInput{Email: "ada@school.test", Password: "pw"})
		assert.True(t, domain.IsKind(err, domain.KindForbidden))
	})

	t.Run("bad password is unauthorized", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByEmail", ctx, "ada@school.test").Return(tc, nil).Once()
		f.authSvc.On("CheckPassword", mock.Anything, "bad").Return(false).Once()

		_, err := f.svc.Login(ctx, domain.LoginInput{Email: "ada@school.test", Password: "bad"})
		assert.True(t, domain.IsKind(err, domain.KindUnauthorized))
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	prefix := fmt.Sprintf("TCH/%d/", time.Now().Year())

	t.Run("assigns the next staff number and notifies", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("CountByStaffPrefix", ctx, prefix).Return(int64(2), nil).Once()
		f.teacherRepo.On("UpdateStatus", ctx, tc).Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, "You approved Staff Ada", domain.NotifInfo, domain.ToAdmin(adminID)).
			Return(&domain.Notification{}).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, domain.NotifSuccess, domain.ToTeacher(tc.ID)).
			Return(&domain.Notification{}).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, domain.NotifWarning, domain.ToTeacher(tc.ID)).
			Return(&domain.Notification{}).Once()
		f.emailSvc.On("SendTeacherApproved", mock.Anything, "ada@school.test", "Dr Ada Obi", prefix+"0003").Return(nil).Once()
		f.activitySvc.On("Record", mock.Anything, mock.MatchedBy(func(in domain.RecordActivityInput) bool {
			return in.Action == domain.ActionTeacherApproved && in.EntityID == tc.ID
		})).Return(nil).Once()

		got, err := f.svc.Approve(ctx, adminID, tc.ID)
		require.NoError(t, err)
		assert.True(t, got.IsApproved)
		assert.Equal(t, domain.TeacherApproved, got.Status)
		require.NotNil(t, got.StaffNumber)
		assert.Equal(t, prefix+"0003", *got.StaffNumber)

		f.dispatcher.Wait()
		f.notifier.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
		f.activitySvc.AssertExpectations(t)
	})

	t.Run("retries when the staff number is taken", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("CountByStaffPrefix", ctx, prefix).Return(int64(0), nil).Twice()
		f.teacherRepo.On("UpdateStatus", ctx, tc).Return(repository.ErrDuplicate).Once()
		f.teacherRepo.On("UpdateStatus", ctx, tc).Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(&domain.Notification{})
		f.emailSvc.On("SendTeacherApproved", mock.Anything, mock.Anything, mock.Anything, prefix+"0002").Return(nil).Once()
		f.activitySvc.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := f.svc.Approve(ctx, adminID, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, prefix+"0002", *got.StaffNumber)

		f.dispatcher.Wait()
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("already approved conflicts", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		tc.IsApproved = true
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()

		_, err := f.svc.Approve(ctx, adminID, tc.ID)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})

	t.Run("unknown teacher", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.teacherRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

		_, err := f.svc.Approve(ctx, adminID, id)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
	})
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("marks the teacher rejected", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("UpdateStatus", ctx, mock.MatchedBy(func(x *domain.Teacher) bool {
			return x.Status == domain.TeacherRejected
		})).Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, domain.NotifInfo, domain.ToAdmin(adminID)).
			Return(&domain.Notification{}).Once()
		f.notifier.On("Notify", mock.Anything, mock.Anything, domain.NotifError, domain.ToTeacher(tc.ID)).
			Return(&domain.Notification{}).Once()
		f.emailSvc.On("SendTeacherRejected", mock.Anything, "ada@school.test", "Dr Ada Obi").Return(nil).Once()
		f.activitySvc.On("Record", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := f.svc.Reject(ctx, adminID, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TeacherRejected, got.Status)

		f.dispatcher.Wait()
		f.notifier.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("approved teacher cannot be rejected", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		tc.IsApproved = true
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()

		_, err := f.svc.Reject(ctx, adminID, tc.ID)
		assert.True(t, domain.IsKind(err, domain.KindConflict))
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("teacher edits own profile", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("UpdateProfile", ctx, mock.MatchedBy(func(x *domain.Teacher) bool {
			return x.Title == "Prof" && x.PhoneNumber == "0803" && x.Department == "Physics"
		})).Return(nil).Once()
		f.activitySvc.On("Record", mock.Anything, mock.MatchedBy(func(in domain.RecordActivityInput) bool {
			return in.ActorRole == domain.RoleTeacher && in.ActorID == tc.ID && in.Action == domain.ActionTeacherProfileUpdated
		})).Return(nil).Once()

		title, phone := "Prof", " 0803 "
		got, err := f.svc.UpdateProfile(ctx, tc.ID, domain.UpdateTeacherProfileInput{Title: &title, PhoneNumber: &phone})
		require.NoError(t, err)
		assert.Equal(t, "Prof Ada Obi", got.FullName())

		f.dispatcher.Wait()
		f.teacherRepo.AssertExpectations(t)
		f.activitySvc.AssertExpectations(t)
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UpdateProfile(ctx, uuid.New(), domain.UpdateTeacherProfileInput{})
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
	})
}

func TestUpdateDepartment(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("moves the teacher and tells them", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("UpdateProfile", ctx, mock.MatchedBy(func(x *domain.Teacher) bool {
			return x.Department == "Electrical"
		})).Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, "Your department information has been updated.", domain.NotifInfo,
			domain.ToTeacher(tc.ID)).Return(&domain.Notification{}).Once()
		f.activitySvc.On("Record", mock.Anything, mock.MatchedBy(func(in domain.RecordActivityInput) bool {
			return in.ActorID == adminID && in.Action == domain.ActionTeacherDepartmentSet && in.EntityID == tc.ID
		})).Return(nil).Once()

		got, err := f.svc.UpdateDepartment(ctx, adminID, tc.ID, " Electrical ")
		require.NoError(t, err)
		assert.Equal(t, "Electrical", got.Department)

		f.dispatcher.Wait()
		f.notifier.AssertExpectations(t)
		f.activitySvc.AssertExpectations(t)
	})

	t.Run("blank department", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UpdateDepartment(ctx, adminID, uuid.New(), "  ")
		assert.True(t, domain.IsKind(err, domain.KindInvalid))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("removes the teacher and records it", func(t *testing.T) {
		f := newFixture()
		tc := pendingTeacher()
		f.teacherRepo.On("GetByID", ctx, tc.ID).Return(tc, nil).Once()
		f.teacherRepo.On("Delete", ctx, tc.ID).Return(true, nil).Once()
		f.notifier.On("Notify", mock.Anything, "Your account has been deleted by the School Administration.",
			domain.NotifError, domain.ToTeacher(tc.ID)).Return(&domain.Notification{}).Once()
		f.activitySvc.On("Record", mock.Anything, mock.MatchedBy(func(in domain.RecordActivityInput) bool {
			return in.Action == domain.ActionTeacherDeleted && in.EntityID == tc.ID
		})).Return(nil).Once()

		require.NoError(t, f.svc.Delete(ctx, adminID, tc.ID))

		f.dispatcher.Wait()
		f.teacherRepo.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
		f.activitySvc.AssertExpectations(t)
	})

	t.Run("unknown teacher", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.teacherRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

		err := f.svc.Delete(ctx, adminID, id)
		assert.True(t, domain.IsKind(err, domain.KindNotFound))
		f.teacherRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
