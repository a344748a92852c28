package handler

import (
	"school-portal/internal/config"
	"school-portal/internal/service"
)

type Handlers struct {
	Auth          *AuthHandler
	Profile       *ProfileHandler
	Password      *PasswordHandler
	Notification  *NotificationHandler
	Message       *MessageHandler
	Payment       *PaymentHandler
	PaymentConfig *PaymentConfigHandler
	Admin         *AdminHandler
}

func NewHandlers(services *service.Services, cfg *config.Config) *Handlers {
	uploads := newUploader(cfg.UploadTmpDir, cfg.UploadMaxBytes)

	return &Handlers{
		Auth:          NewAuthHandler(services.Admin, services.Teacher, services.Student, uploads),
		Profile:       NewProfileHandler(services.Admin, services.Teacher, services.Student, uploads),
		Password:      NewPasswordHandler(services.Password),
		Notification:  NewNotificationHandler(services.Notification),
		Message:       NewMessageHandler(services.Message),
		Payment:       NewPaymentHandler(services.Payment, uploads),
		PaymentConfig: NewPaymentConfigHandler(services.PaymentConfig),
		Admin:         NewAdminHandler(services.Teacher, services.Student, services.Dashboard, services.Activity),
	}
}
