package handler

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/service/admin"
	"school-portal/internal/service/student"
	"school-portal/internal/service/teacher"
)

type ProfileHandler struct {
	adminService   admin.Service
	teacherService teacher.Service
	studentService student.Service
	uploads        uploader
}

func NewProfileHandler(adminService admin.Service, teacherService teacher.Service, studentService student.Service, uploads uploader) *ProfileHandler {
	return &ProfileHandler{
		adminService:   adminService,
		teacherService: teacherService,
		studentService: studentService,
		uploads:        uploads,
	}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var profile any
	switch principal.Role {
	case domain.RoleAdmin:
		profile, err = h.adminService.Profile(c.UserContext(), principal.ID)
	case domain.RoleTeacher:
		profile, err = h.teacherService.Profile(c.UserContext(), principal.ID)
	case domain.RoleStudent:
		profile, err = h.studentService.Profile(c.UserContext(), principal.ID)
	default:
		return middleware.Forbidden("Unknown role")
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *ProfileHandler) UpdateStudent(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.UpdateStudentProfileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	s, err := h.studentService.UpdateProfile(c.UserContext(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(s)
}

func (h *ProfileHandler) UpdateAdmin(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.UpdateAdminProfileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	a, err := h.adminService.UpdateProfile(c.UserContext(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(a)
}

func (h *ProfileHandler) UpdateTeacher(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input domain.UpdateTeacherProfileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	t, err := h.teacherService.UpdateProfile(c.UserContext(), principal.ID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

func (h *ProfileHandler) MissingFields(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	missing, err := h.studentService.MissingProfileFields(c.UserContext(), principal.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"complete": len(missing) == 0,
		"missing":  missing,
	})
}

// UpdatePhoto replaces the caller's profile photo with the "photo" form file.
func (h *ProfileHandler) UpdatePhoto(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	path, err := h.uploads.save(c, "photo")
	if err != nil {
		return err
	}

	var url string
	switch principal.Role {
	case domain.RoleAdmin:
		url, err = h.adminService.UpdatePhoto(c.UserContext(), principal.ID, path)
	case domain.RoleTeacher:
		url, err = h.teacherService.UpdatePhoto(c.UserContext(), principal.ID, path)
	default:
		url, err = h.studentService.UpdatePhoto(c.UserContext(), principal.ID, path)
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"profile_photo": url})
}
