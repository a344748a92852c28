package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
)

const (
	cacheKey = "dashboard:counts"
	cacheTTL = 2 * time.Minute
)

type Service interface {
	// Stats returns account counts and total revenue. Counts may be served
	// from cache; revenue is always recomputed.
	Stats(ctx context.Context) (*domain.DashboardStats, error)
}

type service struct {
	studentRepo repository.StudentRepository
	teacherRepo repository.TeacherRepository
	paymentRepo repository.PaymentRepository
	redis       *redis.Client
}

func NewService(studentRepo repository.StudentRepository, teacherRepo repository.TeacherRepository, paymentRepo repository.PaymentRepository, redis *redis.Client) Service {
	return &service{
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
		paymentRepo: paymentRepo,
		redis:       redis,
	}
}

type counts struct {
	TotalStudents    int64 `json:"total_students"`
	TotalTeachers    int64 `json:"total_teachers"`
	ApprovedTeachers int64 `json:"approved_teachers"`
}

func (s *service) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	c, err := s.counts(ctx)
	if err != nil {
		return nil, err
	}

	revenue, err := s.paymentRepo.SumPaid(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardStats{
		TotalStudents:    c.TotalStudents,
		TotalTeachers:    c.TotalTeachers,
		ApprovedTeachers: c.ApprovedTeachers,
		TotalRevenue:     revenue,
	}, nil
}

func (s *service) counts(ctx context.Context) (*counts, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var c counts
			if json.Unmarshal([]byte(cached), &c) == nil {
				return &c, nil
			}
		}
	}

	students, err := s.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.teacherRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	approved, err := s.teacherRepo.CountApproved(ctx)
	if err != nil {
		return nil, err
	}

	c := &counts{TotalStudents: students, TotalTeachers: teachers, ApprovedTeachers: approved}

	if s.redis != nil {
		if data, err := json.Marshal(c); err == nil {
			_ = s.redis.Set(ctx, cacheKey, data, cacheTTL).Err()
		}
	}

	return c, nil
}
