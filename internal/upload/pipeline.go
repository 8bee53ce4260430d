package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// Kind selects where a file is stored.
type Kind string

const (
	KindCDN    Kind = "cdn"
	KindBucket Kind = "bucket"
)

// Naming selects how the stored name is derived.
type Naming string

const (
	NamingOriginal Naming = "original"
	NamingRandom   Naming = "random"
	NamingFixed    Naming = "fixed"
)

// AllowedTypes are the accepted upload MIME types.
var AllowedTypes = []string{"image/webp", "image/jpeg", "image/png", "image/gif", "image/svg+xml"}

// Target describes the destination of an upload.
type Target struct {
	Kind     Kind
	Folder   string
	Naming   Naming
	PublicID string // used with NamingFixed
}

// File is an uploaded file as received from the client.
type File struct {
	Name   string
	Reader io.Reader
}

// Result describes a stored file.
type Result struct {
	Name        string `json:"name"`
	PublicID    string `json:"publicId"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ImageUploader sends files to the image CDN and deletes them again.
type ImageUploader interface {
	Upload(ctx context.Context, src FileSource, opts UploadOptions, progress func(int)) (*UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
}

// ObjectStore keeps files in a flat bucket.
type ObjectStore interface {
	List(ctx context.Context) ([]model.Screenshot, error)
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, name string) error
}

// Pipeline validates a file and stores it on the CDN or in the bucket.
type Pipeline struct {
	cdn      ImageUploader
	bucket   ObjectStore
	maxBytes int64
	logger   zerolog.Logger
}

// NewPipeline creates a pipeline. Either backend may be nil, in which case
// targets using it fail with model.ErrNotConfigured.
func NewPipeline(cdn ImageUploader, bucket ObjectStore, maxBytes int64, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cdn:      cdn,
		bucket:   bucket,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "upload").Logger(),
	}
}

// MaxBytes is the largest file Store accepts.
func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// Discard deletes the CDN asset a fixed-name target points at. An asset
// that is already gone counts as deleted.
func (p *Pipeline) Discard(ctx context.Context, t Target) error {
	if t.Kind != KindCDN || t.Naming != NamingFixed || t.PublicID == "" {
		return model.ErrMissingField
	}
	if p.cdn == nil {
		return model.ErrNotConfigured
	}

	id := path.Join(t.Folder, t.PublicID)
	if err := p.cdn.Destroy(ctx, id); err != nil {
		return err
	}

	p.logger.Info().Str("public_id", id).Msg("cdn asset discarded")
	return nil
}

// Store reads f, checks its size and type, and writes it to t.
func (p *Pipeline) Store(ctx context.Context, f File, t Target, progress func(int)) (*Result, error) {
	result, err := p.store(ctx, f, t, progress)

	outcome := "ok"
	if err != nil {
		outcome = model.CodeOf(err)
	}
	metrics.Uploads.WithLabelValues(string(t.Kind), outcome).Inc()

	return result, err
}

func (p *Pipeline) store(ctx context.Context, f File, t Target, progress func(int)) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(f.Reader, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, model.ErrTooLarge
	}
	if len(data) == 0 {
		return nil, model.ErrMissingField
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), AllowedTypes...) {
		p.logger.Warn().Str("file", f.Name).Str("mime", mt.String()).Msg("rejected upload type")
		return nil, model.ErrUnsupportedMedia
	}

	id, err := publicID(f.Name, t)
	if err != nil {
		return nil, err
	}

	result := &Result{
		PublicID:    id,
		ContentType: mt.String(),
		Size:        int64(len(data)),
	}

	switch t.Kind {
	case KindCDN:
		if p.cdn == nil {
			return nil, model.ErrNotConfigured
		}
		up, err := p.cdn.Upload(ctx, FileSource{Name: f.Name, Reader: bytes.NewReader(data), Size: int64(len(data))},
			UploadOptions{PublicID: id, Folder: t.Folder}, progress)
		if err != nil {
			return nil, err
		}
		result.Name = up.PublicID
		result.URL = up.SecureURL
		if result.URL == "" {
			result.URL = up.URL
		}

	case KindBucket:
		if p.bucket == nil {
			return nil, model.ErrNotConfigured
		}
		name := id + mt.Extension()
		if t.Folder != "" {
			name = path.Join(t.Folder, name)
		}
		if progress != nil {
			progress(0)
		}
		url, err := p.bucket.Upload(ctx, name, data, mt.String())
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(100)
		}
		result.Name = name
		result.URL = url

	default:
		return nil, fmt.Errorf("unknown upload target %q", t.Kind)
	}

	p.logger.Info().
		Str("kind", string(t.Kind)).
		Str("name", result.Name).
		Int64("size", result.Size).
		Msg("file stored")

	return result, nil
}

func publicID(filename string, t Target) (string, error) {
	switch t.Naming {
	case NamingFixed:
		if t.PublicID == "" {
			return "", model.ErrMissingField
		}
		return t.PublicID, nil
	case NamingOriginal:
		base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
		base = strings.TrimSuffix(base, path.Ext(base))
		if s := slug.Make(base); s != "" {
			return s, nil
		}
		return uuid.NewString(), nil
	default:
		return uuid.NewString(), nil
	}
}
