package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// profileService implements ProfileService.
type profileService struct {
	repo   repository.ProfileRepository
	cache  *cache.Query
	notify ChangeNotifier
	logger zerolog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	repo repository.ProfileRepository,
	query *cache.Query,
	notify ChangeNotifier,
	logger zerolog.Logger,
) ProfileService {
	return &profileService{
		repo:   repo,
		cache:  query,
		notify: notify,
		logger: logger.With().Str("service", "profile").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	key := cache.Key{Resource: model.TableProfiles, Scope: id.String()}
	profile, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*model.Profile, error) {
		return s.repo.GetByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, model.ErrNotFound
	}
	return profile, nil
}

func (s *profileService) Update(ctx context.Context, id uuid.UUID, in *model.ProfileInput) (*model.Profile, error) {
	if in == nil {
		return nil, model.ErrMissingField
	}
	if in.DisplayName != nil && strings.TrimSpace(*in.DisplayName) == "" {
		return nil, model.ErrMissingField
	}

	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, model.ErrNotFound
	}

	if in.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*in.DisplayName)
	}
	if in.AvatarURL != nil {
		profile.AvatarURL = *in.AvatarURL
	}
	profile.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, profile); err != nil {
		s.logger.Error().Err(err).Str("profile_id", id.String()).Msg("failed to update profile")
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.notify.Changed(ctx, model.TableProfiles, id, model.OpUpdate)

	return profile, nil
}

// Authenticate never says which of email or password was wrong.
func (s *profileService) Authenticate(ctx context.Context, email, password string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, model.ErrInvalidCredentials
	}

	profile, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if profile == nil || !auth.CheckPassword(profile.PasswordHash, password) {
		s.logger.Warn().Str("email", email).Msg("failed sign-in attempt")
		return nil, model.ErrInvalidCredentials
	}

	s.logger.Info().Str("profile_id", profile.ID.String()).Msg("profile signed in")

	return profile, nil
}
