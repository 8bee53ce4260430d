package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// openingHourService implements OpeningHourService.
type openingHourService struct {
	resolver TenantResolver
	repo     repository.OpeningHourRepository
	cache    *cache.Query
	notify   ChangeNotifier
	logger   zerolog.Logger
}

// NewOpeningHourService creates a new opening hour service.
func NewOpeningHourService(
	resolver TenantResolver,
	repo repository.OpeningHourRepository,
	query *cache.Query,
	notify ChangeNotifier,
	logger zerolog.Logger,
) OpeningHourService {
	return &openingHourService{
		resolver: resolver,
		repo:     repo,
		cache:    query,
		notify:   notify,
		logger:   logger.With().Str("service", "opening_hour").Logger(),
	}
}

func (s *openingHourService) List(ctx context.Context, slug string) ([]model.OpeningHour, error) {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := cache.Key{Resource: model.TableOpeningHours, Scope: tenantID.String()}
	hours, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]model.OpeningHour, error) {
		return s.repo.List(ctx, tenantID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list opening hours: %w", err)
	}
	return hours, nil
}

func (s *openingHourService) Create(ctx context.Context, slug string, in *model.OpeningHourInput) (*model.OpeningHour, error) {
	if in == nil || in.DayOfWeek == nil || in.OpenTime == nil || in.CloseTime == nil {
		return nil, model.ErrMissingField
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	hour := &model.OpeningHour{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(hour)

	if err := s.repo.Create(ctx, hour); err != nil {
		s.logger.Error().Err(err).
			Str("tenant_id", tenantID.String()).
			Int("day_of_week", hour.DayOfWeek).
			Int("slot_index", hour.SlotIndex).
			Msg("failed to create opening hour")
		return nil, fmt.Errorf("failed to create opening hour: %w", err)
	}

	s.notify.Changed(ctx, model.TableOpeningHours, tenantID, model.OpInsert)

	return hour, nil
}

func (s *openingHourService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.OpeningHourInput) (*model.OpeningHour, error) {
	if in == nil {
		return nil, model.ErrMissingField
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	hour, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get opening hour: %w", err)
	}
	if hour == nil {
		return nil, model.ErrNotFound
	}

	in.Apply(hour)
	if err := s.repo.Update(ctx, hour); err != nil {
		s.logger.Error().Err(err).Str("hour_id", id.String()).Msg("failed to update opening hour")
		return nil, fmt.Errorf("failed to update opening hour: %w", err)
	}

	s.notify.Changed(ctx, model.TableOpeningHours, tenantID, model.OpUpdate)

	return hour, nil
}

func (s *openingHourService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error().Err(err).Str("hour_id", id.String()).Msg("failed to delete opening hour")
		return fmt.Errorf("failed to delete opening hour: %w", err)
	}

	s.notify.Changed(ctx, model.TableOpeningHours, tenantID, model.OpDelete)

	return nil
}
