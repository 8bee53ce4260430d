package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxJSONBody caps decoded request bodies.
const maxJSONBody = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError maps err to a status and writes the error body. Internal
// errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status := statusFor(err)

	resp := model.ErrorResponse{Error: model.CodeOf(err), Message: "internal server error"}
	var de *model.DomainError
	var ce *upload.CDNError
	switch {
	case errors.As(err, &de):
		resp.Message = de.Message
	case errors.As(err, &ce):
		resp.Error = "CDN_ERROR"
		resp.Message = ce.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg("handler error")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, resp)
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	var ce *upload.CDNError
	if errors.As(err, &ce) {
		return http.StatusBadGateway
	}

	switch model.CodeOf(err) {
	case model.ErrCodeTenantNotFound, model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidJSON, model.ErrCodeMissingField, model.ErrCodeInvalidPrice,
		model.ErrCodeInvalidCategory, model.ErrCodeInvalidDay, model.ErrCodeInvalidTime,
		model.ErrCodeInvalidAction, model.ErrCodeEmptyCart:
		return http.StatusBadRequest
	case model.ErrCodeConflict:
		return http.StatusConflict
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case model.ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

var (
	errInvalidJSON    = model.NewDomainError(model.ErrCodeInvalidJSON, "Request body is not valid JSON")
	errSignInRequired = model.NewDomainError(model.ErrCodeUnauthorised, "Sign in required")
)

// decodeJSON reads a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return errInvalidJSON
	}
	return nil
}

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ErrNotFound
	}
	return id, nil
}
