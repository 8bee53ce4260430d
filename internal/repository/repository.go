package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TenantRepository defines data access for tenants. It is the lookup table
// behind slug resolution.
type TenantRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// GetIDBySlug returns the tenant ID for slug or model.ErrTenantNotFound.
	GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error)

	// GetBySlug returns the tenant row for slug, or nil when none matches.
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)

	// SlugExists reports whether slug is taken.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ListByOwner returns the tenants owned by a profile.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error)

	// Create inserts a tenant within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, tenant *model.Tenant) error
}

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	// GetByID returns the profile or nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	// GetByEmail returns the profile or nil when absent.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)

	// Create inserts a profile within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, profile *model.Profile) error

	// Update stores display name and avatar.
	Update(ctx context.Context, profile *model.Profile) error
}

// MenuItemRepository defines tenant-scoped data access for menu items.
type MenuItemRepository interface {
	List(ctx context.Context, tenantID uuid.UUID, availableOnly bool) ([]model.MenuItem, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.MenuItem, error)
	Create(ctx context.Context, item *model.MenuItem) error
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// OpeningHourRepository defines tenant-scoped data access for opening hours.
type OpeningHourRepository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]model.OpeningHour, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.OpeningHour, error)
	Create(ctx context.Context, hour *model.OpeningHour) error
	Update(ctx context.Context, hour *model.OpeningHour) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// RestaurantInfoRepository defines access to the single info row per tenant.
type RestaurantInfoRepository interface {
	// Get returns the tenant's info row or nil when it was never saved.
	Get(ctx context.Context, tenantID uuid.UUID) (*model.RestaurantInfo, error)

	// Upsert inserts or replaces the row keyed on tenant_id.
	Upsert(ctx context.Context, info *model.RestaurantInfo) error
}

// PromoBannerRepository defines tenant-scoped data access for promo banners.
type PromoBannerRepository interface {
	List(ctx context.Context, tenantID uuid.UUID, liveOnly bool) ([]model.PromoBanner, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PromoBanner, error)
	Create(ctx context.Context, banner *model.PromoBanner) error
	Update(ctx context.Context, banner *model.PromoBanner) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
