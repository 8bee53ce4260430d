package service

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// maxSlugAttempts bounds the -2, -3, ... suffix search on signup.
const maxSlugAttempts = 50

// reservedSlugs collide with top-level routes.
var reservedSlugs = map[string]bool{
	"admin": true, "api": true, "auth": true, "settings": true,
	"health": true, "metrics": true, "profile": true, "tenants": true,
}

// tenantResolver implements TenantResolver.
type tenantResolver struct {
	repo repository.TenantRepository
}

// NewTenantResolver creates a resolver backed by the tenants table.
func NewTenantResolver(repo repository.TenantRepository) TenantResolver {
	return &tenantResolver{repo: repo}
}

// Resolve looks the slug up on every call.
func (r *tenantResolver) Resolve(ctx context.Context, slug string) (uuid.UUID, error) {
	if slug == "" {
		return uuid.Nil, model.ErrTenantNotFound
	}
	return r.repo.GetIDBySlug(ctx, slug)
}

// tenantService implements TenantService.
type tenantService struct {
	tenantRepo  repository.TenantRepository
	profileRepo repository.ProfileRepository
	logger      zerolog.Logger
}

// NewTenantService creates a new tenant service.
func NewTenantService(
	tenantRepo repository.TenantRepository,
	profileRepo repository.ProfileRepository,
	logger zerolog.Logger,
) TenantService {
	return &tenantService{
		tenantRepo:  tenantRepo,
		profileRepo: profileRepo,
		logger:      logger.With().Str("service", "tenant").Logger(),
	}
}

// Register creates a profile and its first tenant.
func (s *tenantService) Register(ctx context.Context, in *model.RegisterInput) (*model.Tenant, *model.Profile, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, nil, model.ErrConflict
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, nil, err
	}

	tenantSlug, err := s.availableSlug(ctx, in.RestaurantName)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = email
	}
	profile := &model.Profile{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tenant := &model.Tenant{
		ID:        uuid.New(),
		Slug:      tenantSlug,
		Name:      strings.TrimSpace(in.RestaurantName),
		OwnerID:   profile.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.tenantRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, nil, fmt.Errorf("failed to register: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.profileRepo.Create(ctx, tx, profile); err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to create profile")
		return nil, nil, fmt.Errorf("failed to create profile: %w", err)
	}

	if err = s.tenantRepo.Create(ctx, tx, tenant); err != nil {
		s.logger.Error().Err(err).Str("slug", tenant.Slug).Msg("failed to create tenant")
		return nil, nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("slug", tenant.Slug).Msg("failed to commit transaction")
		return nil, nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().
		Str("tenant_id", tenant.ID.String()).
		Str("slug", tenant.Slug).
		Str("profile_id", profile.ID.String()).
		Msg("tenant registered")

	return tenant, profile, nil
}

// GetBySlug returns the tenant behind slug.
func (s *tenantService) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	if slug == "" {
		return nil, model.ErrTenantNotFound
	}

	tenant, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, model.ErrTenantNotFound
	}
	return tenant, nil
}

// ListByOwner returns the tenants owned by ownerID.
func (s *tenantService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error) {
	tenants, err := s.tenantRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// Authorize returns the tenant when profileID owns it or privileged is set.
func (s *tenantService) Authorize(ctx context.Context, slug string, profileID uuid.UUID, privileged bool) (*model.Tenant, error) {
	tenant, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if privileged || tenant.OwnerID == profileID {
		return tenant, nil
	}

	s.logger.Warn().
		Str("slug", slug).
		Str("profile_id", profileID.String()).
		Msg("tenant access denied")
	return nil, model.ErrForbidden
}

func (s *tenantService) availableSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", model.ErrMissingField
	}

	for i := 1; i <= maxSlugAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		if reservedSlugs[candidate] {
			continue
		}
		taken, err := s.tenantRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	s.logger.Warn().Str("slug", base).Msg("no free slug variant")
	return "", model.ErrConflict
}

func validateRegisterInput(in *model.RegisterInput) error {
	if in == nil {
		return model.ErrMissingField
	}
	if strings.TrimSpace(in.RestaurantName) == "" || strings.TrimSpace(in.Email) == "" {
		return model.ErrMissingField
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Email address is not valid")
	}
	if len(in.Password) < auth.MinPasswordLength {
		return model.NewDomainError(model.ErrCodeMissingField,
			fmt.Sprintf("Password must be at least %d characters", auth.MinPasswordLength))
	}
	return nil
}
