package activity

import (
	"context"

	"school-portal/internal/domain"
	"school-portal/internal/repository"
)

type Service interface {
	Record(ctx context.Context, input domain.RecordActivityInput) error
	List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityLog], error)
}

type service struct {
	activityRepo repository.ActivityLogRepository
}

func NewService(activityRepo repository.ActivityLogRepository) Service {
	return &service{
		activityRepo: activityRepo,
	}
}

func (s *service) Record(ctx context.Context, input domain.RecordActivityInput) error {
	entry, err := repository.NewActivityLog(input)
	if err != nil {
		return err
	}
	return s.activityRepo.Create(ctx, entry)
}

func (s *service) List(ctx context.Context, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityLog], error) {
	params.Validate()

	entries, total, err := s.activityRepo.List(ctx, params)
	if err != nil {
		return domain.PaginatedResponse[domain.ActivityLog]{}, err
	}
	return domain.NewPaginatedResponse(entries, params, total), nil
}
