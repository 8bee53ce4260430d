package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/upload"

	"github.com/rs/zerolog"
)

const screenshotsResource = "screenshots"

// screenshotService implements ScreenshotService on the flat bucket.
type screenshotService struct {
	store    upload.ObjectStore
	pipeline *upload.Pipeline
	cache    *cache.Query
	logger   zerolog.Logger
}

// NewScreenshotService creates a new screenshot service. store may be nil
// when no bucket is configured.
func NewScreenshotService(
	store upload.ObjectStore,
	pipeline *upload.Pipeline,
	query *cache.Query,
	logger zerolog.Logger,
) ScreenshotService {
	return &screenshotService{
		store:    store,
		pipeline: pipeline,
		cache:    query,
		logger:   logger.With().Str("service", "screenshot").Logger(),
	}
}

func (s *screenshotService) List(ctx context.Context) ([]model.Screenshot, error) {
	if s.store == nil {
		return nil, model.ErrNotConfigured
	}

	key := cache.Key{Resource: screenshotsResource, Scope: "all"}
	shots, err := cache.Fetch(ctx, s.cache, key, s.store.List)
	if err != nil {
		return nil, fmt.Errorf("failed to list screenshots: %w", err)
	}
	return shots, nil
}

func (s *screenshotService) Upload(ctx context.Context, file upload.File) (*model.Screenshot, error) {
	res, err := s.pipeline.Store(ctx, file, upload.Target{Kind: upload.KindBucket, Naming: upload.NamingOriginal}, nil)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	return &model.Screenshot{
		Name:      res.Name,
		URL:       res.URL,
		Size:      res.Size,
		UpdatedAt: time.Now(),
	}, nil
}

func (s *screenshotService) Remove(ctx context.Context, name string) error {
	if s.store == nil {
		return model.ErrNotConfigured
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "..") {
		return model.ErrMissingField
	}

	if err := s.store.Remove(ctx, name); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to remove screenshot")
		return fmt.Errorf("failed to remove screenshot: %w", err)
	}

	s.invalidate(ctx)

	s.logger.Info().Str("name", name).Msg("screenshot removed")

	return nil
}

func (s *screenshotService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, screenshotsResource, "all"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate screenshot list")
	}
}
