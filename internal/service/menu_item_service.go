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

// Cache variants for filtered public reads.
const (
	variantAvailable = "available"
	variantLive      = "live"
)

// menuItemService implements MenuItemService.
type menuItemService struct {
	resolver TenantResolver
	repo     repository.MenuItemRepository
	cache    *cache.Query
	notify   ChangeNotifier
	logger   zerolog.Logger
}

// NewMenuItemService creates a new menu item service.
func NewMenuItemService(
	resolver TenantResolver,
	repo repository.MenuItemRepository,
	query *cache.Query,
	notify ChangeNotifier,
	logger zerolog.Logger,
) MenuItemService {
	return &menuItemService{
		resolver: resolver,
		repo:     repo,
		cache:    query,
		notify:   notify,
		logger:   logger.With().Str("service", "menu_item").Logger(),
	}
}

func (s *menuItemService) List(ctx context.Context, slug string) ([]model.MenuItem, error) {
	return s.list(ctx, slug, false)
}

func (s *menuItemService) ListAvailable(ctx context.Context, slug string) ([]model.MenuItem, error) {
	return s.list(ctx, slug, true)
}

func (s *menuItemService) list(ctx context.Context, slug string, availableOnly bool) ([]model.MenuItem, error) {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	key := cache.Key{Resource: model.TableMenuItems, Scope: tenantID.String()}
	if availableOnly {
		key.Variant = variantAvailable
	}

	items, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) ([]model.MenuItem, error) {
		return s.repo.List(ctx, tenantID, availableOnly)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to list menu items")
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// Get reads through to the repository; single items are not cached.
func (s *menuItemService) Get(ctx context.Context, slug string, id uuid.UUID) (*model.MenuItem, error) {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrNotFound
	}
	return item, nil
}

func (s *menuItemService) Create(ctx context.Context, slug string, in *model.MenuItemInput) (*model.MenuItem, error) {
	if in == nil || in.Name == nil || in.Price == nil || in.Category == nil {
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
	item := &model.MenuItem{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.Apply(item)

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to create menu item")
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.notify.Changed(ctx, model.TableMenuItems, tenantID, model.OpInsert)

	s.logger.Info().
		Str("tenant_id", tenantID.String()).
		Str("item_id", item.ID.String()).
		Msg("menu item created")

	return item, nil
}

func (s *menuItemService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.MenuItemInput) (*model.MenuItem, error) {
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

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	if item == nil {
		return nil, model.ErrNotFound
	}

	in.Apply(item)
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to update menu item")
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}

	s.notify.Changed(ctx, model.TableMenuItems, tenantID, model.OpUpdate)

	s.logger.Debug().Str("item_id", id.String()).Msg("menu item updated")

	return item, nil
}

func (s *menuItemService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	tenantID, err := s.resolver.Resolve(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		s.logger.Error().Err(err).Str("item_id", id.String()).Msg("failed to delete menu item")
		return fmt.Errorf("failed to delete menu item: %w", err)
	}

	s.notify.Changed(ctx, model.TableMenuItems, tenantID, model.OpDelete)

	s.logger.Info().Str("item_id", id.String()).Msg("menu item deleted")

	return nil
}
