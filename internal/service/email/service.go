package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v3"

	"school-portal/internal/config"
	"school-portal/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type Service interface {
	SendStudentWelcome(ctx context.Context, toEmail, fullName, studentNumber string) error
	SendAdminWelcome(ctx context.Context, toEmail, fullName string) error
	SendTeacherRegistered(ctx context.Context, teacherName, teacherEmail, department string) error
	SendTeacherApproved(ctx context.Context, toEmail, fullName, staffNumber string) error
	SendTeacherRejected(ctx context.Context, toEmail, fullName string) error
	SendNewMessage(ctx context.Context, msg MessageEmail) error
	SendTransferReceiptUploaded(ctx context.Context, receipt ReceiptEmail) error
	SendGatewayPaymentReceived(ctx context.Context, receipt ReceiptEmail) error
	SendTuitionPaymentApproved(ctx context.Context, toEmail, fullName string, amount float64, session string, level int) error
	SendFeeUpdate(ctx context.Context, toEmail string, amount float64, level int, session string) error
	SendPasswordReset(ctx context.Context, toEmail, fullName, code string, validFor time.Duration) error
	SendLevelChange(ctx context.Context, toEmail, fullName string, level int, session string) error
	SendDepartmentChange(ctx context.Context, toEmail, fullName, department string) error
}

type MessageEmail struct {
	ToEmail       string
	RecipientName string
	SenderName    string
	From          domain.Role
	To            domain.Role
	Text          string
}

type ReceiptEmail struct {
	StudentName   string
	StudentNumber string
	Department    string
	Amount        float64
	Session       string
	Level         int
	Reference     string
	ReceiptURL    string
}

// transport is the subset of the Resend client the service sends through.
type transport interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type service struct {
	transport  transport
	templates  map[string]*template.Template
	from       string
	adminEmail string
	schoolName string
}

func NewService(cfg *config.Config, logger *slog.Logger) Service {
	var t transport
	if cfg.ResendAPIKey != "" {
		t = resend.NewClient(cfg.ResendAPIKey).Emails
	} else {
		logger.Warn("RESEND_API_KEY not set, emails will be logged instead of sent")
		t = &logTransport{logger: logger.With("component", "email")}
	}
	return newService(t, cfg)
}

func newService(t transport, cfg *config.Config) *service {
	return &service{
		transport:  t,
		templates:  parseTemplates(),
		from:       fmt.Sprintf("%s <%s>", cfg.SchoolName, cfg.FromEmail),
		adminEmail: cfg.AdminEmail,
		schoolName: cfg.SchoolName,
	}
}

func parseTemplates() map[string]*template.Template {
	names := []string{
		"welcome_student.html",
		"welcome_admin.html",
		"teacher_registered.html",
		"teacher_status.html",
		"new_message.html",
		"payment_received.html",
		"payment_approved.html",
		"fee_update.html",
		"password_reset.html",
		"level_change.html",
		"department_change.html",
	}
	funcs := template.FuncMap{"money": formatMoney}

	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		templates[name] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name),
		)
	}
	return templates
}

type page struct {
	Title  string
	School string
	Data   any
}

func (s *service) sendEmail(toEmail, subject, templateName string, data any) error {
	if toEmail == "" {
		return fmt.Errorf("send %s: empty recipient address", templateName)
	}

	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("unknown email template %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, page{Title: subject, School: s.schoolName, Data: data}); err != nil {
		return fmt.Errorf("failed to execute email template %s: %w", templateName, err)
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	if _, err := s.transport.Send(params); err != nil {
		return fmt.Errorf("send %s to %s: %w", templateName, toEmail, err)
	}
	return nil
}

func (s *service) SendStudentWelcome(ctx context.Context, toEmail, fullName, studentNumber string) error {
	data := struct {
		Name          string
		StudentNumber string
	}{fullName, studentNumber}
	return s.sendEmail(toEmail, "Welcome to "+s.schoolName, "welcome_student.html", data)
}

func (s *service) SendAdminWelcome(ctx context.Context, toEmail, fullName string) error {
	data := struct{ Name string }{fullName}
	return s.sendEmail(toEmail, "Your administrator account is ready", "welcome_admin.html", data)
}

func (s *service) SendTeacherRegistered(ctx context.Context, teacherName, teacherEmail, department string) error {
	data := struct {
		Name       string
		Email      string
		Department string
	}{teacherName, teacherEmail, department}
	return s.sendEmail(s.adminEmail, "New teacher registration awaiting approval", "teacher_registered.html", data)
}

type teacherStatus struct {
	Name        string
	Approved    bool
	StaffNumber string
}

func (s *service) SendTeacherApproved(ctx context.Context, toEmail, fullName, staffNumber string) error {
	data := teacherStatus{Name: fullName, Approved: true, StaffNumber: staffNumber}
	return s.sendEmail(toEmail, "Your teacher account has been approved", "teacher_status.html", data)
}

func (s *service) SendTeacherRejected(ctx context.Context, toEmail, fullName string) error {
	data := teacherStatus{Name: fullName}
	return s.sendEmail(toEmail, "Update on your teacher registration", "teacher_status.html", data)
}

func (s *service) SendNewMessage(ctx context.Context, msg MessageEmail) error {
	dir, err := directionOf(msg.From, msg.To)
	if err != nil {
		return err
	}

	data := struct {
		RecipientName string
		SenderName    string
		Intro         string
		Preview       string
	}{
		RecipientName: msg.RecipientName,
		SenderName:    msg.SenderName,
		Intro:         dir.intro,
		Preview:       Preview(msg.Text),
	}
	return s.sendEmail(msg.ToEmail, dir.subject, "new_message.html", data)
}

type receiptData struct {
	ReceiptEmail
	Method string
}

func (s *service) SendTransferReceiptUploaded(ctx context.Context, receipt ReceiptEmail) error {
	data := receiptData{ReceiptEmail: receipt, Method: "bank transfer"}
	return s.sendEmail(s.adminEmail, "New tuition transfer receipt uploaded", "payment_received.html", data)
}

func (s *service) SendGatewayPaymentReceived(ctx context.Context, receipt ReceiptEmail) error {
	data := receiptData{ReceiptEmail: receipt, Method: "online payment"}
	return s.sendEmail(s.adminEmail, "New online tuition payment received", "payment_received.html", data)
}

func (s *service) SendTuitionPaymentApproved(ctx context.Context, toEmail, fullName string, amount float64, session string, level int) error {
	data := struct {
		Name    string
		Amount  float64
		Session string
		Level   int
	}{fullName, amount, session, level}
	return s.sendEmail(toEmail, "Tuition payment approved", "payment_approved.html", data)
}

func (s *service) SendFeeUpdate(ctx context.Context, toEmail string, amount float64, level int, session string) error {
	data := struct {
		Amount  float64
		Level   int
		Session string
	}{amount, level, session}
	return s.sendEmail(toEmail, "Tuition fee update", "fee_update.html", data)
}

func (s *service) SendPasswordReset(ctx context.Context, toEmail, fullName, code string, validFor time.Duration) error {
	data := struct {
		Name     string
		Code     string
		ValidFor string
	}{fullName, code, fmt.Sprintf("%d minutes", int(validFor.Minutes()))}
	return s.sendEmail(toEmail, "Your password reset code", "password_reset.html", data)
}

func (s *service) SendLevelChange(ctx context.Context, toEmail, fullName string, level int, session string) error {
	data := struct {
		Name    string
		Level   int
		Session string
	}{fullName, level, session}
	return s.sendEmail(toEmail, fmt.Sprintf("Welcome to Level %d", level), "level_change.html", data)
}

func (s *service) SendDepartmentChange(ctx context.Context, toEmail, fullName, department string) error {
	data := struct {
		Name       string
		Department string
	}{fullName, department}
	return s.sendEmail(toEmail, "Your department has changed", "department_change.html", data)
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

type logTransport struct {
	logger *slog.Logger
}

func (t *logTransport) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	t.logger.Info("email not sent, no provider configured", "to", params.To, "subject", params.Subject)
	return &resend.SendEmailResponse{}, nil
}
