package handler

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"school-portal/internal/domain"
	"school-portal/internal/mocks"
	"school-portal/internal/service/admin"
)

var _ admin.Service = (*mocks.AdminService)(nil)

func profileApp(principal *domain.Principal) (*fiber.App, *mocks.AdminService, *mocks.TeacherService) {
	admins := new(mocks.AdminService)
	teachers := new(mocks.TeacherService)
	h := NewProfileHandler(admins, teachers, new(mocks.StudentService), uploader{})
	app := newTestApp(principal)
	app.Patch("/me/admin", h.UpdateAdmin)
	app.Patch("/me/teacher", h.UpdateTeacher)
	return app, admins, teachers
}

func TestProfileHandler_UpdateAdmin(t *testing.T) {
	principal := &domain.Principal{Role: domain.RoleAdmin, ID: uuid.New()}

	t.Run("updates the caller", func(t *testing.T) {
		app, admins, _ := profileApp(principal)
		phone := "08030000000"
		admins.On("UpdateProfile", mock.Anything, principal.ID, domain.UpdateAdminProfileInput{PhoneNumber: &phone}).
			Return(&domain.Admin{ID: principal.ID, PhoneNumber: phone}, nil).Once()

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/me/admin", domain.UpdateAdminProfileInput{PhoneNumber: &phone}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		admins.AssertExpectations(t)
	})

	t.Run("unknown gender", func(t *testing.T) {
		app, admins, _ := profileApp(principal)
		gender := "other"

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/me/admin", domain.UpdateAdminProfileInput{Gender: &gender}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		admins.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProfileHandler_UpdateTeacher(t *testing.T) {
	principal := &domain.Principal{Role: domain.RoleTeacher, ID: uuid.New()}

	t.Run("updates the caller", func(t *testing.T) {
		app, _, teachers := profileApp(principal)
		title := "Dr"
		teachers.On("UpdateProfile", mock.Anything, principal.ID, domain.UpdateTeacherProfileInput{Title: &title}).
			Return(&domain.Teacher{ID: principal.ID, Title: title}, nil).Once()

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/me/teacher", domain.UpdateTeacherProfileInput{Title: &title}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		teachers.AssertExpectations(t)
	})

	t.Run("nothing to update", func(t *testing.T) {
		app, _, teachers := profileApp(principal)
		teachers.On("UpdateProfile", mock.Anything, principal.ID, domain.UpdateTeacherProfileInput{}).
			Return(nil, domain.Invalidf("no valid fields to update")).Once()

		resp := do(t, app, jsonRequest(t, http.MethodPatch, "/me/teacher", domain.UpdateTeacherProfileInput{}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
