package paymentconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
	"school-portal/internal/service/activity"
	"school-portal/internal/service/dispatch"
	"school-portal/internal/service/email"
)

// Resolved configs live in one hash so an upsert can drop every cached
// fallback with a single delete.
const cacheKey = "payment_config:resolved"

type Service interface {
	Upsert(ctx context.Context, adminID uuid.UUID, input domain.UpsertPaymentConfigInput) (*domain.PaymentConfig, error)
	// Resolve returns the config for a level and session, falling back to the
	// global row and then to any row. It returns nil when none exists.
	Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error)
	// Amount is the resolved amount, or 0 without a config.
	Amount(ctx context.Context, level int, session string) (float64, error)
	List(ctx context.Context) ([]domain.PaymentConfig, error)
}

type service struct {
	configRepo  repository.PaymentConfigRepository
	studentRepo repository.StudentRepository
	emailSvc    email.Service
	activitySvc activity.Service
	dispatcher  *dispatch.Dispatcher
	redis       *redis.Client
	ttl         time.Duration
	logger      *slog.Logger
}

func NewService(
	configRepo repository.PaymentConfigRepository,
	studentRepo repository.StudentRepository,
	emailSvc email.Service,
	activitySvc activity.Service,
	dispatcher *dispatch.Dispatcher,
	redis *redis.Client,
	ttl time.Duration,
	logger *slog.Logger,
) Service {
	return &service{
		configRepo:  configRepo,
		studentRepo: studentRepo,
		emailSvc:    emailSvc,
		activitySvc: activitySvc,
		dispatcher:  dispatcher,
		redis:       redis,
		ttl:         ttl,
		logger:      logger.With("component", "payment_config"),
	}
}

func (s *service) Upsert(ctx context.Context, adminID uuid.UUID, input domain.UpsertPaymentConfigInput) (*domain.PaymentConfig, error) {
	if input.Amount <= 0 {
		return nil, domain.Invalidf("amount must be greater than zero")
	}
	if input.Level != 0 && !domain.ValidLevel(input.Level) {
		return nil, domain.Invalidf("invalid level %d", input.Level)
	}
	if input.Session != "" && !domain.ValidSession(input.Session) {
		return nil, domain.Invalidf("invalid session %q, expected YYYY/YYYY", input.Session)
	}

	cfg := &domain.PaymentConfig{
		ID:      uuid.New(),
		Level:   input.Level,
		Session: input.Session,
		Amount:  input.Amount,
	}
	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upsert payment config: %w", err)
	}

	s.invalidate(ctx)

	s.dispatcher.Go("email.fee_update", func(ctx context.Context) error {
		emails, err := s.studentRepo.ListEmails(ctx, cfg.Level, cfg.Session)
		if err != nil {
			return err
		}
		var errs []error
		for _, to := range emails {
			if err := s.emailSvc.SendFeeUpdate(ctx, to, cfg.Amount, cfg.Level, cfg.Session); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
	s.dispatcher.Go("activity.payment_config", func(ctx context.Context) error {
		return s.activitySvc.Record(ctx, domain.RecordActivityInput{
			ActorRole:  domain.RoleAdmin,
			ActorID:    adminID,
			Action:     domain.ActionPaymentConfigSet,
			EntityType: "payment_config",
			EntityID:   cfg.ID,
			Detail:     map[string]any{"level": cfg.Level, "session": cfg.Session, "amount": cfg.Amount},
		})
	})

	return cfg, nil
}

func (s *service) Resolve(ctx context.Context, level int, session string) (*domain.PaymentConfig, error) {
	field := fmt.Sprintf("%d:%s", level, session)

	if s.redis != nil {
		if cached, err := s.redis.HGet(ctx, cacheKey, field).Result(); err == nil {
			var cfg domain.PaymentConfig
			if json.Unmarshal([]byte(cached), &cfg) == nil {
				return &cfg, nil
			}
		}
	}

	cfg, err := s.configRepo.Resolve(ctx, level, session)
	if err != nil {
		return nil, fmt.Errorf("resolve payment config: %w", err)
	}
	if cfg == nil {
		return nil, nil
	}

	if s.redis != nil {
		if cfgJSON, err := json.Marshal(cfg); err == nil {
			pipe := s.redis.TxPipeline()
			pipe.HSet(ctx, cacheKey, field, cfgJSON)
			pipe.Expire(ctx, cacheKey, s.ttl)
			if _, err := pipe.Exec(ctx); err != nil {
				s.logger.Warn("failed to cache payment config", "error", err)
			}
		}
	}

	return cfg, nil
}

func (s *service) Amount(ctx context.Context, level int, session string) (float64, error) {
	cfg, err := s.Resolve(ctx, level, session)
	if err != nil {
		return 0, err
	}
	if cfg == nil {
		return 0, nil
	}
	return cfg.Amount, nil
}

func (s *service) List(ctx context.Context) ([]domain.PaymentConfig, error) {
	return s.configRepo.List(ctx)
}

func (s *service) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate payment config cache", "error", err)
	}
}
