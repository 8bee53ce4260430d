package service

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	tenants TenantService
	menu    MenuItemService
	info    RestaurantInfoService
	logger  zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(
	tenants TenantService,
	menu MenuItemService,
	info RestaurantInfoService,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		tenants: tenants,
		menu:    menu,
		info:    info,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

// Checkout prices req against the public menu. Client prices are never
// trusted; unknown or unavailable items fail the whole checkout.
func (s *cartService) Checkout(ctx context.Context, slug string, req *cart.CheckoutRequest) (*cart.Checkout, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.ErrEmptyCart
	}

	tenant, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	items, err := s.menu.ListAvailable(ctx, slug)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	c := cart.New()
	for _, line := range req.Items {
		item, ok := byID[line.ItemID]
		if !ok {
			s.logger.Warn().
				Str("slug", slug).
				Str("item_id", line.ItemID.String()).
				Msg("checkout references unavailable item")
			return nil, model.ErrNotFound
		}
		c.Add(item, line.Quantity)
	}
	if c.Empty() {
		return nil, model.ErrEmptyCart
	}

	info, err := s.info.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if model.DigitsOnly(info.WhatsApp) == "" {
		return nil, model.ErrNotConfigured
	}

	restaurant := tenant.Name
	if info.Hero.Title != "" {
		restaurant = info.Hero.Title
	}
	msg := cart.Message(restaurant, c, req.CustomerName, req.Note)

	s.logger.Info().
		Str("slug", slug).
		Int("count", c.Count()).
		Float64("total", c.Total()).
		Msg("checkout prepared")

	return &cart.Checkout{
		Lines:       c.Lines(),
		Count:       c.Count(),
		Total:       c.Total(),
		Message:     msg,
		WhatsAppURL: cart.WhatsAppURL(info.WhatsApp, msg),
	}, nil
}
