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

// restaurantInfoService implements RestaurantInfoService.
type restaurantInfoService struct {
	resolver TenantResolver
	repo     repository.RestaurantInfoRepository
	cache    *cache.Query
	notify   ChangeNotifier
	logger   zerolog.Logger
}

// NewRestaurantInfoService creates a new restaurant info service.
func NewRestaurantInfoService(
	resolver TenantResolver,
	repo repository.RestaurantInfoRepository,
	query *cache.Query,
	notify ChangeNotifier,
	logger zerolog.Logger,
) RestaurantInfoService {
	return &restaurantInfoService{
		resolver: resolver,
		repo:     repo,
		cache:    query,
		notify:   notify,
		logger:   logger.With().Str("service", "restaurant_info").Logger(),
	}
}

func (s *restaurantInfoService) Get(ctx context.Context, slug string) (*model.RestaurantInfo, error) {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := cache.Key{Resource: model.TableRestaurantInfo, Scope: tenantID.String()}
	info, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*model.RestaurantInfo, error) {
		info, err := s.repo.Get(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if info == nil {
			info = &model.RestaurantInfo{TenantID: tenantID, Additional: map[string]any{}}
		}
		return info, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant info: %w", err)
	}
	return info, nil
}

func (s *restaurantInfoService) Upsert(ctx context.Context, slug string, in *model.RestaurantInfoInput) (*model.RestaurantInfo, error) {
	if in == nil {
		return nil, model.ErrMissingField
	}

	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Merge over the stored row, not the cached copy.
	info, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant info: %w", err)
	}
	op := model.OpUpdate
	if info == nil {
		op = model.OpInsert
		info = &model.RestaurantInfo{ID: uuid.New(), TenantID: tenantID, CreatedAt: time.Now()}
	}

	in.Apply(info)
	info.UpdatedAt = time.Now()

	if err := s.repo.Upsert(ctx, info); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to save restaurant info")
		return nil, fmt.Errorf("failed to save restaurant info: %w", err)
	}

	s.notify.Changed(ctx, model.TableRestaurantInfo, tenantID, op)

	s.logger.Info().Str("tenant_id", tenantID.String()).Str("op", string(op)).Msg("restaurant info saved")

	return info, nil
}
