package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"school-portal/internal/config"
	"school-portal/internal/domain"
	"school-portal/internal/handler"
	"school-portal/internal/middleware"
	"school-portal/internal/repository"
	"school-portal/internal/service"
	"school-portal/internal/service/auth"
	"school-portal/internal/service/dispatch"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := config.NewLogger(cfg, os.Stdout)
	if envErr != nil {
		log.Info("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	redis, err := config.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Warn("redis unavailable, caching disabled", "error", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	minioClient, err := config.NewMinIOClient(ctx, cfg, log)
	if err != nil {
		log.Warn("minio unavailable, uploads will fail", "error", err)
		minioClient = nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dispatcher := dispatch.New(log, reg, cfg.DispatchTimeout)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redis, minioClient, cfg, log, dispatcher)
	handlers := handler.NewHandlers(services, cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(log),
		BodyLimit:    2*cfg.UploadMaxBytes + 1024*1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.Metrics(reg))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	setupRoutes(app, handlers, services.Auth)

	go func() {
		log.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("failed to shut down http server", "error", err)
	}

	// In-flight emails and notifications finish before the pools close.
	dispatcher.Close()
	log.Info("shutdown complete")
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/admin/register", h.Auth.RegisterAdmin)
	authRoutes.Post("/admin/login", h.Auth.LoginAdmin)
	authRoutes.Post("/teachers/register", h.Auth.RegisterTeacher)
	authRoutes.Post("/teachers/login", h.Auth.LoginTeacher)
	authRoutes.Post("/students/register", h.Auth.RegisterStudent)
	authRoutes.Post("/students/login", h.Auth.LoginStudent)
	for prefix, role := range map[string]domain.Role{
		"/admin":    domain.RoleAdmin,
		"/teachers": domain.RoleTeacher,
		"/students": domain.RoleStudent,
	} {
		authRoutes.Post(prefix+"/forgot-password", h.Password.Forgot(role))
		authRoutes.Post(prefix+"/verify-code", h.Password.VerifyCode(role))
		authRoutes.Post(prefix+"/reset-password", h.Password.Reset(role))
	}

	protected := v1.Group("", middleware.AuthRequired(authService))

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	teacherOnly := middleware.RequireRole(domain.RoleTeacher)
	studentOnly := middleware.RequireRole(domain.RoleStudent)

	me := protected.Group("/me")
	me.Get("/", h.Profile.Me)
	me.Post("/photo", h.Profile.UpdatePhoto)
	me.Patch("/password", h.Password.Change)
	me.Patch("/admin", adminOnly, h.Profile.UpdateAdmin)
	me.Patch("/teacher", teacherOnly, h.Profile.UpdateTeacher)
	me.Patch("/student", studentOnly, h.Profile.UpdateStudent)
	me.Get("/student/missing-fields", studentOnly, h.Profile.MissingFields)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/read-all", h.Notification.MarkAllAsRead)

	messages := protected.Group("/messages")
	messages.Post("/", h.Message.Send)
	messages.Get("/thread", h.Message.Thread)
	messages.Get("/unread-counts", h.Message.UnreadCounts)
	messages.Get("/broadcasts", middleware.RequireRole(domain.RoleAdmin, domain.RoleTeacher), h.Message.AdminBroadcasts)
	messages.Patch("/:id", h.Message.Edit)
	messages.Delete("/:id", h.Message.Delete)

	payments := protected.Group("/payments")
	payments.Post("/receipt", studentOnly, h.Payment.UploadReceipt)
	payments.Post("/gateway/initiate", studentOnly, h.Payment.InitiateGateway)
	payments.Post("/gateway/verify", studentOnly, h.Payment.VerifyGatewayReference)
	payments.Get("/me", studentOnly, h.Payment.MyLedger)
	payments.Get("/", adminOnly, h.Payment.List)
	payments.Get("/total", adminOnly, h.Payment.Total)
	payments.Get("/students/:studentId", adminOnly, h.Payment.ListForStudent)
	payments.Patch("/:id/verify", adminOnly, h.Payment.Verify)

	paymentConfigs := protected.Group("/payment-configs")
	paymentConfigs.Get("/resolve", h.PaymentConfig.Resolve)
	paymentConfigs.Get("/", adminOnly, h.PaymentConfig.List)
	paymentConfigs.Put("/", adminOnly, h.PaymentConfig.Upsert)

	admin := protected.Group("/admin", adminOnly)
	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/activity", h.Admin.Activity)
	admin.Get("/teachers", h.Admin.ListTeachers)
	admin.Post("/teachers/:id/approve", h.Admin.ApproveTeacher)
	admin.Post("/teachers/:id/reject", h.Admin.RejectTeacher)
	admin.Patch("/teachers/:id/department", h.Admin.UpdateTeacherDepartment)
	admin.Delete("/teachers/:id", h.Admin.DeleteTeacher)
	admin.Get("/students", h.Admin.ListStudents)
	admin.Patch("/students/:id", h.Admin.UpdateStudent)
	admin.Post("/students/:id/promote", h.Admin.PromoteStudent)
	admin.Patch("/students/:id/department", h.Admin.ChangeStudentDepartment)
	admin.Delete("/students/:id", h.Admin.DeleteStudent)
}
