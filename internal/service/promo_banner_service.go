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

// promoBannerService implements PromoBannerService.
type promoBannerService struct {
	resolver TenantResolver
	repo     repository.PromoBannerRepository
	cache    *cache.Query
	notify   ChangeNotifier
	logger   zerolog.Logger
}

// NewPromoBannerService creates a new promo banner service.
func NewPromoBannerService(
	resolver TenantResolver,
	repo repository.PromoBannerRepository,
	query *cache.Query,
	notify ChangeNotifier,
	logger zerolog.Logger,
) PromoBannerService {
	return &promoBannerService{
		resolver: resolver,
		repo:     repo,
		cache:    query,
		notify:   notify,
		logger:   logger.With().Str("service", "promo_banner").Logger(),
	}
}

func (s *promoBannerService) List(ctx context.Context, slug string) ([]model.PromoBanner, error) {
	return s.list(ctx, slug, false)
}

func (s *promoBannerService) ListLive(ctx context.Context, slug string) ([]model.PromoBanner, error) {
	return s.list(ctx, slug, true)
}

func (s *promoBannerService) list(ctx context.Context, slug string, liveOnly bool) ([]model.PromoBanner, error) {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := cache.Key{Resource: model.TablePromoBanners, Scope: tenantID.String()}
	if liveOnly {
		key.Variant = variantLive
	}

	banners, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]model.PromoBanner, error) {
		return s.repo.List(ctx, tenantID, liveOnly)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list promo banners: %w", err)
	}

	// Cached live lists may outlast an expiry.
	if liveOnly {
		now := time.Now()
		live := banners[:0:0]
		for _, b := range banners {
			if b.Live(now) {
				live = append(live, b)
			}
		}
		banners = live
	}
	return banners, nil
}

func (s *promoBannerService) Create(ctx context.Context, slug string, in *model.PromoBannerInput) (*model.PromoBanner, error) {
	if in == nil || in.Title == nil || in.Action == nil {
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
	banner := &model.PromoBanner{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(banner)

	if err := s.repo.Create(ctx, banner); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to create promo banner")
		return nil, fmt.Errorf("failed to create promo banner: %w", err)
	}

	s.notify.Changed(ctx, model.TablePromoBanners, tenantID, model.OpInsert)

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("banner_id", banner.ID.String()).
		Str("action", string(banner.Action.Type)).
		Msg("promo banner created")

	return banner, nil
}

func (s *promoBannerService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.PromoBannerInput) (*model.PromoBanner, error) {
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

	banner, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get promo banner: %w", err)
	}
	if banner == nil {
		return nil, model.ErrNotFound
	}

	in.Apply(banner)
	if err := s.repo.Update(ctx, banner); err != nil {
		s.logger.Error().Err(err).Str("banner_id", id.String()).Msg("failed to update promo banner")
		return nil, fmt.Errorf("failed to update promo banner: %w", err)
	}

	s.notify.Changed(ctx, model.TablePromoBanners, tenantID, model.OpUpdate)

	return banner, nil
}

func (s *promoBannerService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error().Err(err).Str("banner_id", id.String()).Msg("failed to delete promo banner")
		return fmt.Errorf("failed to delete promo banner: %w", err)
	}

	s.notify.Changed(ctx, model.TablePromoBanners, tenantID, model.OpDelete)

	return nil
}
