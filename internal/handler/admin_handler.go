package handler

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type tenantKey struct{}

// tenantFrom returns the tenant authorised by TenantAccess.
func tenantFrom(ctx context.Context) *model.Tenant {
	t, _ := ctx.Value(tenantKey{}).(*model.Tenant)
	return t
}

// AdminHandler serves the tenant-scoped admin API.
type AdminHandler struct {
	tenants  service.TenantService
	menu     service.MenuItemService
	hours    service.OpeningHourService
	info     service.RestaurantInfoService
	promos   service.PromoBannerService
	pipeline *upload.Pipeline
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	tenants service.TenantService,
	menu service.MenuItemService,
	hours service.OpeningHourService,
	info service.RestaurantInfoService,
	promos service.PromoBannerService,
	pipeline *upload.Pipeline,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		tenants:  tenants,
		menu:     menu,
		hours:    hours,
		info:     info,
		promos:   promos,
		pipeline: pipeline,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// TenantAccess rejects requests from profiles that neither own the tenant
// named by {slug} nor hold the privileged account.
func (h *AdminHandler) TenantAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := auth.ProfileFrom(r.Context())
		if profile == nil {
			writeError(w, errSignInRequired, h.logger)
			return
		}

		tenant, err := h.tenants.Authorize(r.Context(), chi.URLParam(r, "slug"), profile.ID, auth.IsPrivileged(r.Context()))
		if err != nil {
			writeError(w, err, h.logger)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, tenant)))
	})
}

// ListMenuItems handles GET /api/admin/{slug}/menu-items.
func (h *AdminHandler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.menu.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateMenuItem handles POST /api/admin/{slug}/menu-items.
func (h *AdminHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var in model.MenuItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.menu.Create(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem handles PUT /api/admin/{slug}/menu-items/{id}.
func (h *AdminHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var in model.MenuItemInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.menu.Update(r.Context(), chi.URLParam(r, "slug"), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteMenuItem handles DELETE /api/admin/{slug}/menu-items/{id}.
func (h *AdminHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	slug := chi.URLParam(r, "slug")
	item, err := h.menu.Get(r.Context(), slug, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.menu.Delete(r.Context(), slug, id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if item.ImageURL != "" {
		h.discardImage(r.Context(), slug, id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// menuImage is where an item's uploaded image lives on the CDN.
func menuImage(slug string, id uuid.UUID) upload.Target {
	return upload.Target{
		Kind:     upload.KindCDN,
		Folder:   "menu/" + slug,
		Naming:   upload.NamingFixed,
		PublicID: id.String(),
	}
}

// discardImage removes the item's CDN image. The item is already gone, so
// failures are only logged.
func (h *AdminHandler) discardImage(ctx context.Context, slug string, id uuid.UUID) {
	err := h.pipeline.Discard(ctx, menuImage(slug, id))
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotConfigured):
		h.logger.Debug().Str("item_id", id.String()).Msg("no cdn configured, image left in place")
	default:
		h.logger.Warn().Err(err).Str("item_id", id.String()).Msg("failed to discard menu item image")
	}
}

// UploadMenuItemImage handles POST /api/admin/{slug}/menu-items/{id}/image.
// The multipart "file" goes to the CDN under the item's ID, and the item's
// image URL is updated to the stored copy.
func (h *AdminHandler) UploadMenuItemImage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if _, err := h.menu.Get(r.Context(), slug, id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.pipeline.MaxBytes()+1<<20)

	file, err := formFile(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	defer file.Close()

	res, err := h.pipeline.Store(r.Context(), file.File, menuImage(slug, id), nil)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	item, err := h.menu.Update(r.Context(), slug, id, &model.MenuItemInput{ImageURL: &res.URL})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListHours handles GET /api/admin/{slug}/hours.
func (h *AdminHandler) ListHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.hours.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// CreateHour handles POST /api/admin/{slug}/hours.
func (h *AdminHandler) CreateHour(w http.ResponseWriter, r *http.Request) {
	var in model.OpeningHourInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	hour, err := h.hours.Create(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, hour)
}

// UpdateHour handles PUT /api/admin/{slug}/hours/{id}.
func (h *AdminHandler) UpdateHour(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var in model.OpeningHourInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	hour, err := h.hours.Update(r.Context(), chi.URLParam(r, "slug"), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, hour)
}

// DeleteHour handles DELETE /api/admin/{slug}/hours/{id}.
func (h *AdminHandler) DeleteHour(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.hours.Delete(r.Context(), chi.URLParam(r, "slug"), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetInfo handles GET /api/admin/{slug}/info.
func (h *AdminHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.info.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// UpsertInfo handles PUT /api/admin/{slug}/info.
func (h *AdminHandler) UpsertInfo(w http.ResponseWriter, r *http.Request) {
	var in model.RestaurantInfoInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	info, err := h.info.Upsert(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ListPromos handles GET /api/admin/{slug}/promos.
func (h *AdminHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	banners, err := h.promos.List(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// CreatePromo handles POST /api/admin/{slug}/promos.
func (h *AdminHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var in model.PromoBannerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	banner, err := h.promos.Create(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, banner)
}

// UpdatePromo handles PUT /api/admin/{slug}/promos/{id}.
func (h *AdminHandler) UpdatePromo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var in model.PromoBannerInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	banner, err := h.promos.Update(r.Context(), chi.URLParam(r, "slug"), id, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, banner)
}

// DeletePromo handles DELETE /api/admin/{slug}/promos/{id}.
func (h *AdminHandler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if err := h.promos.Delete(r.Context(), chi.URLParam(r, "slug"), id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
