package service

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/upload"

	"github.com/google/uuid"
)

// TenantResolver maps a slug to a tenant ID.
type TenantResolver interface {
	// Resolve returns the tenant ID for slug or model.ErrTenantNotFound.
	Resolve(ctx context.Context, slug string) (uuid.UUID, error)
}

// TenantService defines operations on tenants and signup.
type TenantService interface {
	// Register creates a profile and its first tenant in one transaction.
	Register(ctx context.Context, in *model.RegisterInput) (*model.Tenant, *model.Profile, error)

	// GetBySlug returns the tenant or model.ErrTenantNotFound.
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)

	// ListByOwner returns the tenants a profile owns.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error)

	// Authorize checks that profileID may manage the tenant behind slug.
	// The privileged account may manage every tenant.
	Authorize(ctx context.Context, slug string, profileID uuid.UUID, privileged bool) (*model.Tenant, error)
}

// MenuItemService defines tenant-scoped menu operations.
type MenuItemService interface {
	// List returns every item, for the admin dashboard.
	List(ctx context.Context, slug string) ([]model.MenuItem, error)

	// ListAvailable returns the public menu.
	ListAvailable(ctx context.Context, slug string) ([]model.MenuItem, error)

	Get(ctx context.Context, slug string, id uuid.UUID) (*model.MenuItem, error)
	Create(ctx context.Context, slug string, in *model.MenuItemInput) (*model.MenuItem, error)
	Update(ctx context.Context, slug string, id uuid.UUID, in *model.MenuItemInput) (*model.MenuItem, error)
	Delete(ctx context.Context, slug string, id uuid.UUID) error
}

// OpeningHourService defines tenant-scoped opening hour operations.
type OpeningHourService interface {
	List(ctx context.Context, slug string) ([]model.OpeningHour, error)
	Create(ctx context.Context, slug string, in *model.OpeningHourInput) (*model.OpeningHour, error)
	Update(ctx context.Context, slug string, id uuid.UUID, in *model.OpeningHourInput) (*model.OpeningHour, error)
	Delete(ctx context.Context, slug string, id uuid.UUID) error
}

// RestaurantInfoService defines access to the per-tenant page configuration.
type RestaurantInfoService interface {
	// Get returns the stored info, or an empty record for a tenant that
	// never saved one.
	Get(ctx context.Context, slug string) (*model.RestaurantInfo, error)

	// Upsert merges in over the stored record and saves it.
	Upsert(ctx context.Context, slug string, in *model.RestaurantInfoInput) (*model.RestaurantInfo, error)
}

// PromoBannerService defines tenant-scoped promo banner operations.
type PromoBannerService interface {
	List(ctx context.Context, slug string) ([]model.PromoBanner, error)

	// ListLive returns active, unexpired banners for the public page.
	ListLive(ctx context.Context, slug string) ([]model.PromoBanner, error)

	Create(ctx context.Context, slug string, in *model.PromoBannerInput) (*model.PromoBanner, error)
	Update(ctx context.Context, slug string, id uuid.UUID, in *model.PromoBannerInput) (*model.PromoBanner, error)
	Delete(ctx context.Context, slug string, id uuid.UUID) error
}

// ProfileService defines operations on user profiles.
type ProfileService interface {
	// Get returns the profile or model.ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	Update(ctx context.Context, id uuid.UUID, in *model.ProfileInput) (*model.Profile, error)

	// Authenticate checks email and password and returns the profile.
	Authenticate(ctx context.Context, email, password string) (*model.Profile, error)
}

// ScreenshotService defines operations on the flat screenshot bucket.
type ScreenshotService interface {
	List(ctx context.Context) ([]model.Screenshot, error)
	Upload(ctx context.Context, file upload.File) (*model.Screenshot, error)
	Remove(ctx context.Context, name string) error
}

// CartService prices carts and builds checkout links.
type CartService interface {
	Checkout(ctx context.Context, slug string, req *cart.CheckoutRequest) (*cart.Checkout, error)
}

// ChangeNotifier is told about every successful mutation.
type ChangeNotifier interface {
	Changed(ctx context.Context, table string, scope uuid.UUID, op model.ChangeOp)
}
