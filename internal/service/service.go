package service

import (
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"school-portal/internal/config"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/admin"
	"school-portal/internal/service/auth"
	"school-portal/internal/service/dashboard"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
	"school-portal/internal/service/gateway"
	"school-portal/internal/service/message"
	"school-portal/internal/service/notification"
	"school-portal/internal/service/password"
	"school-portal/internal/service/payment"
	"school-portal/internal/service/paymentconfig"
	"school-portal/internal/service/storage"
	"school-portal/internal/service/student"
	"school-portal/internal/service/teacher"
)

type Services struct {
	Auth          auth.Service
	Admin         admin.Service
	Teacher       teacher.Service
	Student       student.Service
	Notification  notification.Service
	Message       message.Service
	Password      password.Service
	Payment       payment.Service
	PaymentConfig paymentconfig.Service
	Activity      activity.Service
	Dashboard     dashboard.Service
	Email         email.Service
	Storage       storage.Service
}

func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	minioClient *minio.Client,
	cfg *config.Config,
	logger *slog.Logger,
	dispatcher *dispatch.Dispatcher,
) *Services {
	authService := auth.NewService(cfg)
	emailService := email.NewService(cfg, logger)
	storageService := storage.NewService(minioClient, cfg, logger)
	notificationService := notification.NewService(repos.Notification, logger)
	activityService := activity.NewService(repos.ActivityLog)

	paymentConfigService := paymentconfig.NewService(
		repos.PaymentConfig,
		repos.Student,
		emailService,
		activityService,
		dispatcher,
		redis,
		cfg.PaymentConfigCacheTTL,
		logger,
	)

	paymentService := payment.NewService(payment.Deps{
		PaymentRepo: repos.Payment,
		StudentRepo: repos.Student,
		ConfigSvc:   paymentConfigService,
		StorageSvc:  storageService,
		Gateway:     gateway.NewPaystackClient(cfg),
		Notifier:    notificationService,
		EmailSvc:    emailService,
		ActivitySvc: activityService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	teacherService := teacher.NewService(teacher.Deps{
		TeacherRepo: repos.Teacher,
		AuthSvc:     authService,
		StorageSvc:  storageService,
		Notifier:    notificationService,
		EmailSvc:    emailService,
		ActivitySvc: activityService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	messageService := message.NewService(
		repos.Message,
		repos.Teacher,
		repos.Student,
		notificationService,
		emailService,
		dispatcher,
		cfg.AdminEmail,
		logger,
	)

	studentService := student.NewService(student.Deps{
		StudentRepo: repos.Student,
		PaymentRepo: repos.Payment,
		AuthSvc:     authService,
		StorageSvc:  storageService,
		Notifier:    notificationService,
		EmailSvc:    emailService,
		ActivitySvc: activityService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	passwordService := password.NewService(password.Deps{
		AdminRepo:   repos.Admin,
		TeacherRepo: repos.Teacher,
		StudentRepo: repos.Student,
		AuthSvc:     authService,
		EmailSvc:    emailService,
		ActivitySvc: activityService,
		Dispatcher:  dispatcher,
		Redis:       redis,
		Logger:      logger,
	})

	return &Services{
		Auth:          authService,
		Admin:         admin.NewService(repos.Admin, authService, storageService, emailService, activityService, dispatcher, logger),
		Teacher:       teacherService,
		Student:       studentService,
		Notification:  notificationService,
		Message:       messageService,
		Password:      passwordService,
		Payment:       paymentService,
		PaymentConfig: paymentConfigService,
		Activity:      activityService,
		Dashboard:     dashboard.NewService(repos.Student, repos.Teacher, repos.Payment, redis),
		Email:         emailService,
		Storage:       storageService,
	}
}
