package handler

import (
	"github.com/gofiber/fiber/v2"

	"school-portal/internal/domain"
	"school-portal/internal/middleware"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/dashboard"
	"school-portal/internal/service/student"
	"school-portal/internal/service/teacher"
)

type AdminHandler struct {
	teacherService   teacher.Service
	studentService   student.Service
	dashboardService dashboard.Service
	activityService  activity.Service
}

func NewAdminHandler(teacherService teacher.Service, studentService student.Service, dashboardService dashboard.Service, activityService activity.Service) *AdminHandler {
	return &AdminHandler{
		teacherService:   teacherService,
		studentService:   studentService,
		dashboardService: dashboardService,
		activityService:  activityService,
	}
}

// ListTeachers accepts an optional ?status=pending|approved|rejected filter.
func (h *AdminHandler) ListTeachers(c *fiber.Ctx) error {
	var status *domain.TeacherStatus
	if raw := c.Query("status"); raw != "" {
		s := domain.TeacherStatus(raw)
		switch s {
		case domain.TeacherPending, domain.TeacherApproved, domain.TeacherRejected:
			status = &s
		default:
			return middleware.BadRequest("Invalid teacher status")
		}
	}

	result, err := h.teacherService.List(c.UserContext(), status, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AdminHandler) ApproveTeacher(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	t, err := h.teacherService.Approve(c.UserContext(), principal.ID, teacherID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

func (h *AdminHandler) RejectTeacher(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	t, err := h.teacherService.Reject(c.UserContext(), principal.ID, teacherID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

func (h *AdminHandler) UpdateTeacherDepartment(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input domain.DepartmentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	t, err := h.teacherService.UpdateDepartment(c.UserContext(), principal.ID, teacherID, input.Department)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(t)
}

func (h *AdminHandler) DeleteTeacher(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.teacherService.Delete(c.UserContext(), principal.ID, teacherID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) ListStudents(c *fiber.Ctx) error {
	result, err := h.studentService.List(c.UserContext(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// UpdateStudent changes a student's level, semester, department or session.
func (h *AdminHandler) UpdateStudent(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input domain.UpdateStudentDetailsInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	s, err := h.studentService.UpdateDetails(c.UserContext(), principal.ID, studentID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(s)
}

func (h *AdminHandler) PromoteStudent(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	s, err := h.studentService.Promote(c.UserContext(), principal.ID, studentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(s)
}

func (h *AdminHandler) ChangeStudentDepartment(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var input domain.DepartmentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	s, err := h.studentService.ChangeDepartment(c.UserContext(), principal.ID, studentID, input.Department)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(s)
}

func (h *AdminHandler) DeleteStudent(c *fiber.Ctx) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.studentService.Delete(c.UserContext(), principal.ID, studentID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboardService.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *AdminHandler) Activity(c *fiber.Ctx) error {
	result, err := h.activityService.List(c.UserContext(), getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}
