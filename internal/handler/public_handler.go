package handler

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PublicHandler serves the unauthenticated storefront API.
type PublicHandler struct {
	menu   service.MenuItemService
	hours  service.OpeningHourService
	info   service.RestaurantInfoService
	promos service.PromoBannerService
	cart   service.CartService
	logger zerolog.Logger
}

// NewPublicHandler creates a new public handler.
func NewPublicHandler(
	menu service.MenuItemService,
	hours service.OpeningHourService,
	info service.RestaurantInfoService,
	promos service.PromoBannerService,
	cart service.CartService,
	logger zerolog.Logger,
) *PublicHandler {
	return &PublicHandler{
		menu:   menu,
		hours:  hours,
		info:   info,
		promos: promos,
		cart:   cart,
		logger: logger.With().Str("handler", "public").Logger(),
	}
}

// Menu handles GET /api/public/{slug}/menu.
func (h *PublicHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.ListAvailable(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Info handles GET /api/public/{slug}/info.
func (h *PublicHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.info.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Hours handles GET /api/public/{slug}/hours.
func (h *PublicHandler) Hours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.hours.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// Promos handles GET /api/public/{slug}/promos.
func (h *PublicHandler) Promos(w http.ResponseWriter, r *http.Request) {
	banners, err := h.promos.ListLive(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// Checkout handles POST /api/public/{slug}/cart/checkout.
func (h *PublicHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req cart.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	out, err := h.cart.Checkout(r.Context(), chi.URLParam(r, "slug"), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
