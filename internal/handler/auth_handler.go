package handler

import (
	"errors"
	"mime"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles sign-in, sign-out and signup.
type AuthHandler struct {
	profiles service.ProfileService
	tenants  service.TenantService
	sessions *auth.Sessions
	pages    *Renderer
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	profiles service.ProfileService,
	tenants service.TenantService,
	sessions *auth.Sessions,
	pages *Renderer,
	logger zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
		tenants:  tenants,
		sessions: sessions,
		pages:    pages,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Profile *model.Profile `json:"profile"`
	Tenant  *model.Tenant  `json:"tenant,omitempty"`
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// Login handles POST /auth/login with a JSON or form body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	jsonBody := isJSON(r)

	var req loginRequest
	if jsonBody {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err, h.logger)
			return
		}
	} else {
		req.Email = r.PostFormValue("email")
		req.Password = r.PostFormValue("password")
	}

	profile, err := h.profiles.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if jsonBody {
			writeError(w, err, h.logger)
			return
		}
		h.renderLogin(w, statusFor(err), req.Email, err)
		return
	}

	if err := h.sessions.SetCookie(w, profile.ID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if jsonBody {
		writeJSON(w, http.StatusOK, sessionResponse{Profile: profile})
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	if isJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

// Signup handles POST /auth/signup: it registers a profile with its first
// restaurant and signs the new profile in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	jsonBody := isJSON(r)

	var in model.RegisterInput
	if jsonBody {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err, h.logger)
			return
		}
	} else {
		in = model.RegisterInput{
			Email:          r.PostFormValue("email"),
			Password:       r.PostFormValue("password"),
			DisplayName:    r.PostFormValue("displayName"),
			RestaurantName: r.PostFormValue("restaurantName"),
		}
	}

	tenant, profile, err := h.tenants.Register(r.Context(), &in)
	if err != nil {
		if jsonBody {
			writeError(w, err, h.logger)
			return
		}
		h.renderLogin(w, statusFor(err), in.Email, err)
		return
	}

	if err := h.sessions.SetCookie(w, profile.ID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	if jsonBody {
		writeJSON(w, http.StatusCreated, sessionResponse{Profile: profile, Tenant: tenant})
		return
	}
	http.Redirect(w, r, "/admin/"+tenant.Slug, http.StatusSeeOther)
}

// LoginPage handles GET /auth/login.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, http.StatusOK, "", nil)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, status int, email string, err error) {
	data := loginPage{Email: email}
	if err != nil {
		var de *model.DomainError
		if errors.As(err, &de) {
			data.Error = de.Message
		} else {
			h.logger.Error().Err(err).Msg("sign-in failed")
			data.Error = "Something went wrong, please try again."
		}
	}
	h.pages.Render(w, status, pageLogin, data)
}

// ProfileHandler serves the signed-in profile.
type ProfileHandler struct {
	profiles service.ProfileService
	tenants  service.TenantService
	logger   zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profiles service.ProfileService, tenants service.TenantService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		tenants:  tenants,
		logger:   logger.With().Str("handler", "profile").Logger(),
	}
}

// Get handles GET /api/admin/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		writeError(w, errSignInRequired, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Update handles PUT /api/admin/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	current := auth.ProfileFrom(r.Context())
	if current == nil {
		writeError(w, errSignInRequired, h.logger)
		return
	}

	var in model.ProfileInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.profiles.Update(r.Context(), current.ID, &in)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Tenants handles GET /api/admin/tenants.
func (h *ProfileHandler) Tenants(w http.ResponseWriter, r *http.Request) {
	profile := auth.ProfileFrom(r.Context())
	if profile == nil {
		writeError(w, errSignInRequired, h.logger)
		return
	}

	tenants, err := h.tenants.ListByOwner(r.Context(), profile.ID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, tenants)
}
