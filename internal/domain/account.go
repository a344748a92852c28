package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Admin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Gender       string    `json:"gender" db:"gender"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	PasswordHash string    `json:"-" db:"password_hash"`
	ProfilePhoto *string   `json:"profile_photo,omitempty" db:"profile_photo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (a Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

type TeacherStatus string

const (
	TeacherPending  TeacherStatus = "pending"
	TeacherApproved TeacherStatus = "approved"
	TeacherRejected TeacherStatus = "rejected"
)

type Teacher struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Title          string        `json:"title" db:"title"`
	FirstName      string        `json:"first_name" db:"first_name"`
	LastName       string        `json:"last_name" db:"last_name"`
	Email          string        `json:"email" db:"email"`
	PhoneNumber    string        `json:"phone_number" db:"phone_number"`
	Department     string        `json:"department" db:"department"`
	Status         TeacherStatus `json:"status" db:"status"`
	IsApproved     bool          `json:"is_approved" db:"is_approved"`
	StaffNumber    *string       `json:"staff_number,omitempty" db:"staff_number"`
	CVURL          *string       `json:"cv_url,omitempty" db:"cv_url"`
	CertificateURL *string       `json:"certificate_url,omitempty" db:"certificate_url"`
	ProfilePhoto   *string       `json:"profile_photo,omitempty" db:"profile_photo"`
	PasswordHash   string        `json:"-" db:"password_hash"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

func (t Teacher) FullName() string {
	return strings.TrimSpace(strings.Join([]string{t.Title, t.FirstName, t.LastName}, " "))
}

type Student struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	StudentNumber string               `json:"student_number" db:"student_number"`
	FirstName     string               `json:"first_name" db:"first_name"`
	LastName      string               `json:"last_name" db:"last_name"`
	Email         string               `json:"email" db:"email"`
	Department    string               `json:"department" db:"department"`
	Level         int                  `json:"level" db:"level"`
	Semester      string               `json:"semester" db:"semester"`
	Session       string               `json:"session" db:"session"`
	PaymentStatus StudentPaymentStatus `json:"payment_status" db:"payment_status"`
	PhoneNumber   *string              `json:"phone_number,omitempty" db:"phone_number"`
	Age           *int                 `json:"age,omitempty" db:"age"`
	Gender        *string              `json:"gender,omitempty" db:"gender"`
	MaritalStatus *string              `json:"marital_status,omitempty" db:"marital_status"`
	DateOfBirth   *time.Time           `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Nationality   *string              `json:"nationality,omitempty" db:"nationality"`
	StateOfOrigin *string              `json:"state_of_origin,omitempty" db:"state_of_origin"`
	Address       *string              `json:"address,omitempty" db:"address"`
	ProfilePhoto  *string              `json:"profile_photo,omitempty" db:"profile_photo"`
	PasswordHash  string               `json:"-" db:"password_hash"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" db:"updated_at"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// MissingProfileFields lists the profile fields a student must fill in
// before a transfer receipt is accepted.
func (s Student) MissingProfileFields() []string {
	blank := func(v *string) bool { return v == nil || strings.TrimSpace(*v) == "" }

	var missing []string
	if blank(s.PhoneNumber) {
		missing = append(missing, "phone_number")
	}
	if s.Age == nil || *s.Age <= 0 {
		missing = append(missing, "age")
	}
	if blank(s.Gender) {
		missing = append(missing, "gender")
	}
	if blank(s.MaritalStatus) {
		missing = append(missing, "marital_status")
	}
	if s.DateOfBirth == nil {
		missing = append(missing, "date_of_birth")
	}
	if blank(s.Nationality) {
		missing = append(missing, "nationality")
	}
	if blank(s.StateOfOrigin) {
		missing = append(missing, "state_of_origin")
	}
	if blank(s.Address) {
		missing = append(missing, "address")
	}
	return missing
}

// Principal is the authenticated caller of a request.
type Principal struct {
	Role Role      `json:"role"`
	ID   uuid.UUID `json:"id"`
}

func (p Principal) Participant() Participant {
	if p.Role == RoleAdmin {
		return AdminParticipant()
	}
	return Participant{role: p.Role, id: p.ID}
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        Role   `json:"role"`
}

type AuthResponse[T any] struct {
	Account T             `json:"account"`
	Token   TokenResponse `json:"token"`
}

type RegisterAdminInput struct {
	FirstName   string `json:"first_name" validate:"required,min=2"`
	LastName    string `json:"last_name" validate:"required,min=2"`
	Email       string `json:"email" validate:"required,email"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" validate:"required,min=8"`
}

type RegisterTeacherInput struct {
	Title       string `json:"title" form:"title" validate:"required,oneof=Engr Dr Prof"`
	FirstName   string `json:"first_name" form:"first_name" validate:"required,min=2"`
	LastName    string `json:"last_name" form:"last_name" validate:"required,min=2"`
	Email       string `json:"email" form:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	Department  string `json:"department" form:"department" validate:"required"`
	Password    string `json:"password" form:"password" validate:"required,min=8"`
}

type RegisterStudentInput struct {
	FirstName  string `json:"first_name" validate:"required,min=2"`
	LastName   string `json:"last_name" validate:"required,min=2"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	Level      int    `json:"level" validate:"required,oneof=100 200 300 400 500"`
	Semester   string `json:"semester" validate:"required,oneof=first second"`
	Session    string `json:"session" validate:"omitempty,session"`
	Password   string `json:"password" validate:"required,min=8"`
}

type UpdateStudentProfileInput struct {
	PhoneNumber   *string    `json:"phone_number,omitempty"`
	Age           *int       `json:"age,omitempty" validate:"omitempty,gt=0,lt=120"`
	Gender        *string    `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	MaritalStatus *string    `json:"marital_status,omitempty" validate:"omitempty,oneof=single married divorced widowed"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Nationality   *string    `json:"nationality,omitempty"`
	StateOfOrigin *string    `json:"state_of_origin,omitempty"`
	Address       *string    `json:"address,omitempty"`
	Level         *int       `json:"level,omitempty" validate:"omitempty,oneof=100 200 300 400 500"`
	Semester      *string    `json:"semester,omitempty" validate:"omitempty,oneof=first second"`
	Session       *string    `json:"session,omitempty" validate:"omitempty,session"`
}

type UpdateAdminProfileInput struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=2"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=2"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

func (in UpdateAdminProfileInput) Empty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Gender == nil && in.PhoneNumber == nil
}

type UpdateTeacherProfileInput struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,oneof=Engr Dr Prof"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=2"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=2"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Department  *string `json:"department,omitempty" validate:"omitempty,min=2"`
}

func (in UpdateTeacherProfileInput) Empty() bool {
	return in.Title == nil && in.FirstName == nil && in.LastName == nil &&
		in.PhoneNumber == nil && in.Department == nil
}

// UpdateStudentDetailsInput carries the academic fields only an
// administrator may change. Session defaults to the current one when the
// level changes without it.
type UpdateStudentDetailsInput struct {
	Level      *int    `json:"level,omitempty" validate:"omitempty,oneof=100 200 300 400 500"`
	Semester   *string `json:"semester,omitempty" validate:"omitempty,oneof=first second"`
	Department *string `json:"department,omitempty" validate:"omitempty,min=2"`
	Session    *string `json:"session,omitempty" validate:"omitempty,session"`
}

func (in UpdateStudentDetailsInput) Empty() bool {
	return in.Level == nil && in.Semester == nil && in.Department == nil && in.Session == nil
}

type DepartmentInput struct {
	Department string `json:"department" validate:"required,min=2"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type StudentLoginInput struct {
	StudentNumber string `json:"student_number" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

type DashboardStats struct {
	TotalStudents    int64   `json:"total_students"`
	TotalTeachers    int64   `json:"total_teachers"`
	ApprovedTeachers int64   `json:"approved_teachers"`
	TotalRevenue     float64 `json:"total_revenue"`
}
