package handler

import (
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxMultipartMemory is kept in memory while parsing; the rest spills to disk.
const maxMultipartMemory = 8 << 20

type multipartFile struct {
	upload.File
	closer io.Closer
}

func (f *multipartFile) Close() error {
	return f.closer.Close()
}

// formFile returns the multipart "file" field.
func formFile(r *http.Request) (*multipartFile, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, model.ErrTooLarge
		}
		return nil, model.ErrMissingField
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, model.ErrMissingField
	}
	return &multipartFile{
		File:   upload.File{Name: header.Filename, Reader: f},
		closer: f,
	}, nil
}

// CDNHandler signs browser-side CDN requests.
type CDNHandler struct {
	signer *upload.Signer
	logger zerolog.Logger
}

// NewCDNHandler creates a new CDN signing handler.
func NewCDNHandler(signer *upload.Signer, logger zerolog.Logger) *CDNHandler {
	return &CDNHandler{
		signer: signer,
		logger: logger.With().Str("handler", "cdn").Logger(),
	}
}

type signRequest struct {
	PublicID string `json:"public_id"`
	Folder   string `json:"folder"`
}

// Sign handles POST /api/cdn/sign.
func (h *CDNHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	signed, err := h.signer.SignedUpload(req.PublicID, req.Folder)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

// SignDestroy handles POST /api/cdn/sign-destroy.
func (h *CDNHandler) SignDestroy(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	signed, err := h.signer.SignedDestroy(req.PublicID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

// ScreenshotHandler serves the platform screenshot bucket.
type ScreenshotHandler struct {
	service  service.ScreenshotService
	maxBytes int64
	logger   zerolog.Logger
}

// NewScreenshotHandler creates a new screenshot handler.
func NewScreenshotHandler(service service.ScreenshotService, maxBytes int64, logger zerolog.Logger) *ScreenshotHandler {
	return &ScreenshotHandler{
		service:  service,
		maxBytes: maxBytes,
		logger:   logger.With().Str("handler", "screenshot").Logger(),
	}
}

// List handles GET /api/screenshots.
func (h *ScreenshotHandler) List(w http.ResponseWriter, r *http.Request) {
	shots, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, shots)
}

// Upload handles POST /api/settings/screenshots.
func (h *ScreenshotHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart envelope around the file.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	file, err := formFile(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	defer file.Close()

	shot, err := h.service.Upload(r.Context(), file.File)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, shot)
}

// Remove handles DELETE /api/settings/screenshots/{name}.
func (h *ScreenshotHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
