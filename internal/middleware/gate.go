package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Path prefixes that require a signed-in profile.
var ProtectedPrefixes = []string{"/admin", "/settings", "/api/admin", "/api/settings", "/api/cdn"}

// Path prefixes reserved for the privileged profile.
var ElevatedPrefixes = []string{"/settings", "/api/settings"}

// ProfileLoader resolves the profile a session names.
type ProfileLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Gate redirects requests for protected paths to the login page unless
// they carry a valid session for an existing profile. Elevated paths
// additionally require the privileged profile. Passing requests get the
// profile in their context.
func Gate(sessions *auth.Sessions, profiles ProfileLoader, privilegedID uuid.UUID, loginPath string, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "gate").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !hasPrefix(path, ProtectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := sessions.FromRequest(r)
			if err != nil {
				logger.Debug().Err(err).Str("path", path).Msg("no valid session")
				redirect(w, loginPath)
				return
			}

			id, err := claims.ProfileID()
			if err != nil {
				logger.Warn().Err(err).Str("path", path).Msg("session names no profile")
				redirect(w, loginPath)
				return
			}

			profile, err := profiles.Get(r.Context(), id)
			if err != nil || profile == nil {
				logger.Warn().Err(err).Str("profile_id", id.String()).Msg("session profile lookup failed")
				redirect(w, loginPath)
				return
			}

			privileged := id == privilegedID
			if hasPrefix(path, ElevatedPrefixes) && !privileged {
				logger.Warn().Str("profile_id", id.String()).Str("path", path).Msg("elevated path denied")
				redirect(w, loginPath)
				return
			}

			if sessions.NeedsRotation(claims) {
				if err := sessions.SetCookie(w, id); err != nil {
					logger.Error().Err(err).Msg("failed to rotate session")
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithProfile(r.Context(), profile, privileged)))
		})
	}
}

// redirect sends 303 See Other with an empty body.
func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusSeeOther)
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
