package handler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/icon"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin      = "login"
	pageStorefront = "storefront"
	pageAdmin      = "admin"
	pageDashboard  = "dashboard"
	pageSettings   = "settings"
	pageError      = "error"
)

var pageNames = []string{pageLogin, pageStorefront, pageAdmin, pageDashboard, pageSettings, pageError}

var templateFuncs = template.FuncMap{
	"icon":  icon.Lookup,
	"price": cart.FormatPrice,
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Renderer executes the embedded HTML pages. Each page is parsed together
// with the shared layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// NewRenderer parses every page template.
func NewRenderer(logger zerolog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s page: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{
		pages:  pages,
		logger: logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// Render writes the named page. The page is rendered into a buffer first so
// a template failure still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.pages[name]
	if !ok {
		r.logger.Error().Str("page", name).Msg("unknown page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error().Err(err).Str("page", name).Msg("failed to render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type loginPage struct {
	Email string
	Error string
}

type errorPage struct {
	Status  int
	Message string
}

type menuSection struct {
	Category model.Category
	Items    []model.MenuItem
}

type storefrontPage struct {
	Tenant   *model.Tenant
	Info     *model.RestaurantInfo
	Featured []model.MenuItem
	Sections []menuSection
	Hours    []model.OpeningHour
	Promos   []model.PromoBanner
}

type adminPage struct {
	Profile    *model.Profile
	Privileged bool
	Tenants    []model.Tenant
}

type dashboardPage struct {
	Profile    *model.Profile
	Tenant     *model.Tenant
	Info       *model.RestaurantInfo
	Items      []model.MenuItem
	Hours      []model.OpeningHour
	Promos     []model.PromoBanner
	Categories []model.Category
}

type settingsPage struct {
	Profile     *model.Profile
	Configured  bool
	Screenshots []model.Screenshot
}

// groupMenu splits items into category sections in menu order, skipping
// empty categories.
func groupMenu(items []model.MenuItem) []menuSection {
	var sections []menuSection
	for _, c := range model.Categories {
		var in []model.MenuItem
		for _, item := range items {
			if item.Category == c {
				in = append(in, item)
			}
		}
		if len(in) > 0 {
			sections = append(sections, menuSection{Category: c, Items: in})
		}
	}
	return sections
}

func featured(items []model.MenuItem) []model.MenuItem {
	var out []model.MenuItem
	for _, item := range items {
		if item.Featured {
			out = append(out, item)
		}
	}
	return out
}

// PageHandler serves the server-rendered HTML pages.
type PageHandler struct {
	tenants     service.TenantService
	menu        service.MenuItemService
	hours       service.OpeningHourService
	info        service.RestaurantInfoService
	promos      service.PromoBannerService
	screenshots service.ScreenshotService
	pages       *Renderer
	logger      zerolog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(
	tenants service.TenantService,
	menu service.MenuItemService,
	hours service.OpeningHourService,
	info service.RestaurantInfoService,
	promos service.PromoBannerService,
	screenshots service.ScreenshotService,
	pages *Renderer,
	logger zerolog.Logger,
) *PageHandler {
	return &PageHandler{
		tenants:     tenants,
		menu:        menu,
		hours:       hours,
		info:        info,
		promos:      promos,
		screenshots: screenshots,
		pages:       pages,
		logger:      logger.With().Str("handler", "pages").Logger(),
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	data := errorPage{Status: status, Message: "Something went wrong, please try again."}

	var de *model.DomainError
	if errors.As(err, &de) && status < http.StatusInternalServerError {
		data.Message = de.Message
	} else {
		h.logger.Error().Err(err).Int("status", status).Msg("page error")
	}
	h.pages.Render(w, status, pageError, data)
}

// Storefront handles GET /{slug}.
func (h *PageHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	tenant, err := h.tenants.GetBySlug(ctx, slug)
	if err != nil {
		h.renderError(w, err)
		return
	}

	info, err := h.info.Get(ctx, slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	items, err := h.menu.ListAvailable(ctx, slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	hours, err := h.hours.List(ctx, slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	promos, err := h.promos.ListLive(ctx, slug)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.pages.Render(w, http.StatusOK, pageStorefront, storefrontPage{
		Tenant:   tenant,
		Info:     info,
		Featured: featured(items),
		Sections: groupMenu(items),
		Hours:    hours,
		Promos:   promos,
	})
}

// Admin handles GET /admin, listing the restaurants the profile manages.
func (h *PageHandler) Admin(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		h.renderError(w, errSignInRequired)
		return
	}

	tenants, err := h.tenants.ListByOwner(r.Context(), profile.ID)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.pages.Render(w, http.StatusOK, pageAdmin, adminPage{
		Profile:    profile,
		Privileged: auth.IsPrivileged(r.Context()),
		Tenants:    tenants,
	})
}

// Dashboard handles GET /admin/{slug}.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile := auth.ProfileFrom(ctx)
	if profile == nil {
		h.renderError(w, errSignInRequired)
		return
	}

	tenant, err := h.tenants.Authorize(ctx, chi.URLParam(r, "slug"), profile.ID, auth.IsPrivileged(ctx))
	if err != nil {
		h.renderError(w, err)
		return
	}

	info, err := h.info.Get(ctx, tenant.Slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	items, err := h.menu.List(ctx, tenant.Slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	hours, err := h.hours.List(ctx, tenant.Slug)
	if err != nil {
		h.renderError(w, err)
		return
	}
	promos, err := h.promos.List(ctx, tenant.Slug)
	if err != nil {
		h.renderError(w, err)
		return
	}

	h.pages.Render(w, http.StatusOK, pageDashboard, dashboardPage{
		Profile:    profile,
		Tenant:     tenant,
		Info:       info,
		Items:      items,
		Hours:      hours,
		Promos:     promos,
		Categories: model.Categories,
	})
}

// Settings handles GET /settings.
func (h *PageHandler) Settings(w http.ResponseWriter, r *http.Request) {
	data := settingsPage{Profile: auth.ProfileFrom(r.Context()), Configured: true}

	shots, err := h.screenshots.List(r.Context())
	switch {
	case errors.Is(err, model.ErrNotConfigured):
		data.Configured = false
	case err != nil:
		h.renderError(w, err)
		return
	default:
		data.Screenshots = shots
	}

	h.pages.Render(w, http.StatusOK, pageSettings, data)
}
