package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
	"school-portal/internal/service/gateway"
	"school-portal/internal/service/notification"
	"school-portal/internal/service/paymentconfig"
	"school-portal/internal/service/storage"
)

const (
	remarkAwaiting   = "Awaiting verification"
	remarkNotStarted = "No payment made yet"
	gatewaySuccess   = "success"
)

type Service interface {
	RecordTransferReceipt(ctx context.Context, studentID uuid.UUID, receiptPath string) (*domain.Payment, error)
	// RecordGatewayPayment stores a successful gateway transaction once. A
	// reference seen before returns the stored payment without side effects.
	RecordGatewayPayment(ctx context.Context, tx domain.GatewayTransaction) (*domain.Payment, error)
	VerifyGatewayReference(ctx context.Context, reference string) (*domain.Payment, error)
	InitiateGatewayPayment(ctx context.Context, studentID uuid.UUID) (*domain.PaymentInitiation, error)
	Verify(ctx context.Context, paymentID, adminID uuid.UUID, input domain.VerifyPaymentInput) (*domain.Payment, error)
	TotalPaid(ctx context.Context) (float64, error)
	ListAll(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error)
	// StudentLedger lists the student's payments newest first, led by a
	// placeholder row when nothing exists yet for the current level and session.
	StudentLedger(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error)
}

type service struct {
	paymentRepo repository.PaymentRepository
	studentRepo repository.StudentRepository
	configSvc   paymentconfig.Service
	storageSvc  storage.Service
	gateway     gateway.Client
	notifier    notification.Service
	emailSvc    email.Service
	activitySvc activity.Service
	dispatcher  *dispatch.Dispatcher
	logger      *slog.Logger
	now         func() time.Time
}

type Deps struct {
	PaymentRepo repository.PaymentRepository
	StudentRepo repository.StudentRepository
	ConfigSvc   paymentconfig.Service
	StorageSvc  storage.Service
	Gateway     gateway.Client
	Notifier    notification.Service
	EmailSvc    email.Service
	ActivitySvc activity.Service
	Dispatcher  *dispatch.Dispatcher
	Logger      *slog.Logger
}

func NewService(d Deps) Service {
	return &service{
		paymentRepo: d.PaymentRepo,
		studentRepo: d.StudentRepo,
		configSvc:   d.ConfigSvc,
		storageSvc:  d.StorageSvc,
		gateway:     d.Gateway,
		notifier:    d.Notifier,
		emailSvc:    d.EmailSvc,
		activitySvc: d.ActivitySvc,
		dispatcher:  d.Dispatcher,
		logger:      d.Logger.With("component", "payment"),
		now:         time.Now,
	}
}

func (s *service) student(ctx context.Context, id uuid.UUID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, domain.NotFoundf("student %s not found", id)
	}
	return student, nil
}

// sessionOf falls back to the running academic session for students
// registered without one.
func (s *service) sessionOf(student *domain.Student) string {
	if student.Session != "" {
		return student.Session
	}
	return domain.CurrentSession(s.now())
}

func (s *service) RecordTransferReceipt(ctx context.Context, studentID uuid.UUID, receiptPath string) (*domain.Payment, error) {
	// Upload removes the file itself; this covers the early returns.
	defer os.Remove(receiptPath)

	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if missing := student.MissingProfileFields(); len(missing) > 0 {
		return nil, domain.WithFields(
			domain.Forbiddenf("complete your profile before uploading a receipt"), missing)
	}

	session := s.sessionOf(student)
	pending, err := s.paymentRepo.FindPendingTransfer(ctx, student.ID, session, student.Level)
	if err != nil {
		return nil, fmt.Errorf("check pending transfer: %w", err)
	}
	if pending != nil {
		return nil, domain.Conflictf("a transfer receipt for %s is already awaiting verification", session)
	}

	cfg, err := s.configSvc.Resolve(ctx, student.Level, session)
	if err != nil {
		return nil, fmt.Errorf("resolve payment config: %w", err)
	}
	if cfg == nil {
		return nil, domain.Unprocessablef("no payment configuration for level %d session %s", student.Level, session)
	}

	receiptURL, err := s.storageSvc.Upload(ctx, receiptPath, storage.FolderReceipts)
	if err != nil {
		return nil, fmt.Errorf("upload receipt: %w", err)
	}

	payment := &domain.Payment{
		ID:             uuid.New(),
		StudentID:      student.ID,
		Session:        session,
		Level:          student.Level,
		Department:     student.Department,
		Semester:       student.Semester,
		Method:         domain.MethodTransfer,
		AmountExpected: cfg.Amount,
		AmountPaid:     0,
		Status:         domain.PaymentPending,
		ReceiptURL:     receiptURL,
		Reference:      fmt.Sprintf("TRF-%d", s.now().UnixNano()),
		Remark:         remarkAwaiting,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("store transfer payment: %w", err)
	}

	s.logger.Info("transfer receipt recorded", "payment_id", payment.ID, "student_id", student.ID, "reference", payment.Reference)

	receipt := receiptEmail(student, payment)
	s.dispatcher.Go("email.transfer_receipt", func(ctx context.Context) error {
		return s.emailSvc.SendTransferReceiptUploaded(ctx, receipt)
	})
	s.dispatcher.Go("notify.transfer_receipt", notification.Task(s.notifier,
		fmt.Sprintf("%s uploaded a bank transfer receipt for ₦%.2f.", student.FullName(), payment.AmountExpected),
		domain.NotifInfo, domain.Broadcast(domain.RoleAdmin)))

	return payment, nil
}

func (s *service) RecordGatewayPayment(ctx context.Context, tx domain.GatewayTransaction) (*domain.Payment, error) {
	if tx.Reference == "" {
		return nil, domain.Invalidf("transaction reference is required")
	}

	existing, err := s.paymentRepo.GetByReference(ctx, tx.Reference)
	if err != nil {
		return nil, fmt.Errorf("lookup reference: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	if tx.Status != gatewaySuccess {
		return nil, domain.Invalidf("transaction %s was not successful", tx.Reference)
	}
	meta := tx.Metadata
	if meta.StudentID == "" || meta.Session == "" || meta.Level == 0 {
		return nil, domain.Invalidf("transaction metadata must carry studentId, session and level")
	}
	studentID, err := uuid.Parse(meta.StudentID)
	if err != nil {
		return nil, domain.Invalidf("transaction metadata has a malformed studentId")
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil || student.Department == "" || student.Semester == "" {
		return nil, domain.Invalidf("student record missing or incomplete")
	}

	amount := tx.MajorAmount()
	payment := &domain.Payment{
		ID:             uuid.New(),
		StudentID:      student.ID,
		Session:        meta.Session,
		Level:          meta.Level,
		Department:     student.Department,
		Semester:       student.Semester,
		Method:         domain.MethodOnline,
		AmountExpected: amount,
		AmountPaid:     amount,
		Status:         domain.PaymentPending,
		ReceiptURL:     tx.ReceiptURL,
		Reference:      tx.Reference,
		PaidAt:         tx.PaidAt,
	}
	err = s.paymentRepo.CreateWithStudentStatus(ctx, payment, domain.StudentPending)
	if errors.Is(err, repository.ErrDuplicate) {
		// A concurrent call stored the same reference first.
		stored, lookupErr := s.paymentRepo.GetByReference(ctx, tx.Reference)
		if lookupErr != nil {
			return nil, fmt.Errorf("lookup reference: %w", lookupErr)
		}
		if stored != nil {
			return stored, nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("store gateway payment: %w", err)
	}

	s.logger.Info("gateway payment recorded", "payment_id", payment.ID, "student_id", student.ID, "reference", payment.Reference)

	s.dispatcher.Go("notify.gateway_payment_student", notification.Task(s.notifier,
		fmt.Sprintf("Your payment for session %s (%d Level) is now pending admin approval.", payment.Session, payment.Level),
		domain.NotifInfo, domain.ToStudent(student.ID)))
	receipt := receiptEmail(student, payment)
	s.dispatcher.Go("email.gateway_payment", func(ctx context.Context) error {
		return s.emailSvc.SendGatewayPaymentReceived(ctx, receipt)
	})
	s.dispatcher.Go("notify.gateway_payment_admin", notification.Task(s.notifier,
		fmt.Sprintf("%s made a tuition payment of ₦%.2f via Paystack.", student.FullName(), amount),
		domain.NotifInfo, domain.Broadcast(domain.RoleAdmin)))

	return payment, nil
}

func (s *service) VerifyGatewayReference(ctx context.Context, reference string) (*domain.Payment, error) {
	if reference == "" {
		return nil, domain.Invalidf("transaction reference is required")
	}

	existing, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("lookup reference: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	tx, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}
	return s.RecordGatewayPayment(ctx, *tx)
}

func (s *service) InitiateGatewayPayment(ctx context.Context, studentID uuid.UUID) (*domain.PaymentInitiation, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student.Email == "" {
		return nil, domain.Unauthorizedf("student has no email address on record")
	}

	session := s.sessionOf(student)
	cfg, err := s.configSvc.Resolve(ctx, student.Level, session)
	if err != nil {
		return nil, fmt.Errorf("resolve payment config: %w", err)
	}
	if cfg == nil || cfg.Amount <= 0 {
		return nil, domain.Unprocessablef("no payment configuration for level %d session %s", student.Level, session)
	}

	return &domain.PaymentInitiation{
		Email:  student.Email,
		Amount: cfg.Amount,
		Minor:  int64(cfg.Amount*100 + 0.5),
		Metadata: domain.GatewayMetadata{
			StudentID: student.ID.String(),
			Name:      student.FullName(),
			Session:   session,
			Level:     student.Level,
		},
	}, nil
}

func (s *service) Verify(ctx context.Context, paymentID, adminID uuid.UUID, input domain.VerifyPaymentInput) (*domain.Payment, error) {
	if !input.Status.IsValid() {
		return nil, domain.Invalidf("invalid status %q, must be paid, rejected or pending", input.Status)
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return nil, domain.NotFoundf("payment %s not found", paymentID)
	}
	if input.Status == domain.PaymentPaid && payment.VerifiedByAdmin {
		return nil, domain.Conflictf("payment already verified as paid")
	}

	payment.ApplyDecision(input.Status, adminID, input.Remark)
	err = s.paymentRepo.ApplyVerification(ctx, payment)
	if errors.Is(err, repository.ErrStaleVersion) {
		return nil, domain.Conflictf("payment %s was changed by another request", paymentID)
	}
	if err != nil {
		return nil, fmt.Errorf("apply verification: %w", err)
	}

	s.logger.Info("payment verified", "payment_id", payment.ID, "status", payment.Status, "admin_id", adminID)

	s.dispatcher.Go("notify.payment_verified", notification.Task(s.notifier,
		fmt.Sprintf("Your payment for session %s (Level %d) has been marked as %q.", payment.Session, payment.Level, payment.Status),
		payment.Status.NotificationType(), domain.ToStudent(payment.StudentID)))

	if payment.Status == domain.PaymentPaid {
		verified := *payment
		s.dispatcher.Go("email.payment_approved", func(ctx context.Context) error {
			student, err := s.student(ctx, verified.StudentID)
			if err != nil {
				return err
			}
			return s.emailSvc.SendTuitionPaymentApproved(ctx, student.Email, student.FullName(),
				verified.AmountPaid, verified.Session, verified.Level)
		})
	}

	s.dispatcher.Go("activity.payment_verified", func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  domain.RoleAdmin,
			ActorID:    adminID,
			Action:     domain.ActionPaymentVerified,
			EntityType: "payment",
			EntityID:   paymentID,
			Detail:     map[string]any{"status": input.Status, "remark": input.Remark},
		})
	})

	return payment, nil
}

func (s *service) TotalPaid(ctx context.Context) (float64, error) {
	total, err := s.paymentRepo.SumPaid(ctx)
	if err != nil {
		return 0, fmt.Errorf("sum paid payments: %w", err)
	}
	return total, nil
}

func (s *service) ListAll(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error) {
	params.Validate()

	payments, total, err := s.paymentRepo.ListAll(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Payment]{}, err
	}
	return domain.NewPaginatedResponse(payments, params, total), nil
}

func (s *service) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	return s.paymentRepo.ListByStudent(ctx, studentID)
}

func (s *service) StudentLedger(ctx context.Context, studentID uuid.UUID) ([]domain.Payment, error) {
	student, err := s.student(ctx, studentID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	session := s.sessionOf(student)
	for _, p := range payments {
		if p.Level == student.Level && p.Session == session {
			return payments, nil
		}
	}

	expected, err := s.configSvc.Amount(ctx, student.Level, session)
	if err != nil {
		return nil, err
	}
	placeholder := domain.Payment{
		StudentID:      studentID,
		Session:        session,
		Level:          student.Level,
		Department:     student.Department,
		Semester:       student.Semester,
		Method:         domain.MethodTransfer,
		AmountExpected: expected,
		Status:         domain.PaymentPending,
		Remark:         remarkNotStarted,
		CreatedAt:      s.now(),
		IsPlaceholder:  true,
	}
	return append([]domain.Payment{placeholder}, payments...), nil
}

func receiptEmail(student *domain.Student, payment *domain.Payment) email.ReceiptEmail {
	return email.ReceiptEmail{
		StudentName:   student.FullName(),
		StudentNumber: student.StudentNumber,
		Department:    student.Department,
		Amount:        payment.AmountExpected,
		Session:       payment.Session,
		Level:         payment.Level,
		Reference:     payment.Reference,
		ReceiptURL:    payment.ReceiptURL,
	}
}
