package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"school-portal/internal/service/email"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendStudentWelcome(ctx context.Context, toEmail, fullName, studentNumber string) error {
	args := m.Called(ctx, toEmail, fullName, studentNumber)
	return args.Error(0)
}

func (m *EmailService) SendAdminWelcome(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}

func (m *EmailService) SendTeacherRegistered(ctx context.Context, teacherName, teacherEmail, department string) error {
	args := m.Called(ctx, teacherName, teacherEmail, department)
	return args.Error(0)
}

func (m *EmailService) SendTeacherApproved(ctx context.Context, toEmail, fullName, staffNumber string) error {
	args := m.Called(ctx, toEmail, fullName, staffNumber)
	return args.Error(0)
}

func (m *EmailService) SendTeacherRejected(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}

func (m *EmailService) SendNewMessage(ctx context.Context, msg email.MessageEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *EmailService) SendTransferReceiptUploaded(ctx context.Context, receipt email.ReceiptEmail) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *EmailService) SendGatewayPaymentReceived(ctx context.Context, receipt email.ReceiptEmail) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *EmailService) SendTuitionPaymentApproved(ctx context.Context, toEmail, fullName string, amount float64, session string, level int) error {
	args := m.Called(ctx, toEmail, fullName, amount, session, level)
	return args.Error(0)
}

func (m *EmailService) SendFeeUpdate(ctx context.Context, toEmail string, amount float64, level int, session string) error {
	args := m.Called(ctx, toEmail, amount, level, session)
	return args.Error(0)
}

func (m *EmailService) SendPasswordReset(ctx context.Context, toEmail, fullName, code string, validFor time.Duration) error {
	args := m.Called(ctx, toEmail, fullName, code, validFor)
	return args.Error(0)
}

func (m *EmailService) SendLevelChange(ctx context.Context, toEmail, fullName string, level int, session string) error {
	args := m.Called(ctx, toEmail, fullName, level, session)
	return args.Error(0)
}

func (m *EmailService) SendDepartmentChange(ctx context.Context, toEmail, fullName, department string) error {
	args := m.Called(ctx, toEmail, fullName, department)
	return args.Error(0)
}
