package handler

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/service/admin"
	"school-portal/internal/service/student"
	"school-portal/internal/service/teacher"
)

type AuthHandler struct {
	adminService   admin.Service
	teacherService teacher.Service
	studentService student.Service
	uploads        uploader
}

func NewAuthHandler(adminService admin.Service, teacherService teacher.Service, studentService student.Service, uploads uploader) *AuthHandler {
	return &AuthHandler{
		adminService:   adminService,
		teacherService: teacherService,
		studentService: studentService,
		uploads:        uploads,
	}
}

func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var input domain.RegisterAdminInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.adminService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) LoginAdmin(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.adminService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// RegisterTeacher takes a multipart form carrying the account fields plus
// "cv" and "certificate" files. The account waits for admin approval.
func (h *AuthHandler) RegisterTeacher(c *fiber.Ctx) error {
	var input domain.RegisterTeacherInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	cvPath, err := h.uploads.save(c, "cv")
	if err != nil {
		return err
	}
	certificatePath, err := h.uploads.save(c, "certificate")
	if err != nil {
		os.Remove(cvPath)
		return err
	}

	t, err := h.teacherService.Register(c.UserContext(), input, cvPath, certificatePath)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"teacher": t,
		"message": "Registration received. You can log in once an administrator approves your account.",
	})
}

func (h *AuthHandler) LoginTeacher(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.teacherService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *AuthHandler) RegisterStudent(c *fiber.Ctx) error {
	var input domain.RegisterStudentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.studentService.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) LoginStudent(c *fiber.Ctx) error {
	var input domain.StudentLoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	resp, err := h.studentService.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
