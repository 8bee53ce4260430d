package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Public      *handler.PublicHandler
	Admin       *handler.AdminHandler
	Auth        *handler.AuthHandler
	Profile     *handler.ProfileHandler
	CDN         *handler.CDNHandler
	Screenshots *handler.ScreenshotHandler
	Changes     *handler.ChangesHandler
	Pages       *handler.PageHandler
}

// New creates the HTTP router with all routes and middleware configured.
// gate decides which requests need a session.
func New(h Handlers, gate func(http.Handler) http.Handler, origins []string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> Metrics -> CORS -> Gate
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(origins))
	r.Use(gate)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/public/{slug}", func(r chi.Router) {
		r.Get("/menu", h.Public.Menu)
		r.Get("/info", h.Public.Info)
		r.Get("/hours", h.Public.Hours)
		r.Get("/promos", h.Public.Promos)
		r.Post("/cart/checkout", h.Public.Checkout)
	})

	r.Get("/auth/login", h.Auth.LoginPage)
	r.Post("/auth/login", h.Auth.Login)
	r.Post("/auth/logout", h.Auth.Logout)
	r.Post("/auth/signup", h.Auth.Signup)

	r.Post("/api/cdn/sign", h.CDN.Sign)
	r.Post("/api/cdn/sign-destroy", h.CDN.SignDestroy)

	r.Get("/api/screenshots", h.Screenshots.List)
	r.Post("/api/settings/screenshots", h.Screenshots.Upload)
	r.Delete("/api/settings/screenshots/{name}", h.Screenshots.Remove)

	r.Get("/api/admin/profile", h.Profile.Get)
	r.Put("/api/admin/profile", h.Profile.Update)
	r.Get("/api/admin/tenants", h.Profile.Tenants)

	r.Route("/api/admin/{slug}", func(r chi.Router) {
		r.Use(h.Admin.TenantAccess)

		r.Get("/menu-items", h.Admin.ListMenuItems)
		r.Post("/menu-items", h.Admin.CreateMenuItem)
		r.Put("/menu-items/{id}", h.Admin.UpdateMenuItem)
		r.Delete("/menu-items/{id}", h.Admin.DeleteMenuItem)
		r.Post("/menu-items/{id}/image", h.Admin.UploadMenuItemImage)

		r.Get("/hours", h.Admin.ListHours)
		r.Post("/hours", h.Admin.CreateHour)
		r.Put("/hours/{id}", h.Admin.UpdateHour)
		r.Delete("/hours/{id}", h.Admin.DeleteHour)

		r.Get("/info", h.Admin.GetInfo)
		r.Put("/info", h.Admin.UpsertInfo)

		r.Get("/promos", h.Admin.ListPromos)
		r.Post("/promos", h.Admin.CreatePromo)
		r.Put("/promos/{id}", h.Admin.UpdatePromo)
		r.Delete("/promos/{id}", h.Admin.DeletePromo)

		r.Get("/changes", h.Changes.Stream)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})
	r.Get("/admin", h.Pages.Admin)
	r.Get("/admin/{slug}", h.Pages.Dashboard)
	r.Get("/settings", h.Pages.Settings)
	r.Get("/{slug}", h.Pages.Storefront)

	return r
}
