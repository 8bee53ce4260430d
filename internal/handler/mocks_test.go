package handler

import (
	"context"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/upload"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTenantService is a mock implementation of TenantService.
type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Register(ctx context.Context, in *model.RegisterInput) (*model.Tenant, *model.Profile, error) {
	args := m.Called(ctx, in)
	var tenant *model.Tenant
	var profile *model.Profile
	if v := args.Get(0); v != nil {
		tenant = v.(*model.Tenant)
	}
	if v := args.Get(1); v != nil {
		profile = v.(*model.Profile)
	}
	return tenant, profile, args.Error(2)
}

func (m *MockTenantService) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockTenantService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *MockTenantService) Authorize(ctx context.Context, slug string, profileID uuid.UUID, privileged bool) (*model.Tenant, error) {
	args := m.Called(ctx, slug, profileID, privileged)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

// MockMenuItemService is a mock implementation of MenuItemService.
type MockMenuItemService struct {
	mock.Mock
}

func (m *MockMenuItemService) List(ctx context.Context, slug string) ([]model.MenuItem, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuItemService) ListAvailable(ctx context.Context, slug string) ([]model.MenuItem, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MenuItem), args.Error(1)
}

func (m *MockMenuItemService) Get(ctx context.Context, slug string, id uuid.UUID) (*model.MenuItem, error) {
	args := m.Called(ctx, slug, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuItemService) Create(ctx context.Context, slug string, in *model.MenuItemInput) (*model.MenuItem, error) {
	args := m.Called(ctx, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuItemService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.MenuItemInput) (*model.MenuItem, error) {
	args := m.Called(ctx, slug, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MenuItem), args.Error(1)
}

func (m *MockMenuItemService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	args := m.Called(ctx, slug, id)
	return args.Error(0)
}

// MockOpeningHourService is a mock implementation of OpeningHourService.
type MockOpeningHourService struct {
	mock.Mock
}

func (m *MockOpeningHourService) List(ctx context.Context, slug string) ([]model.OpeningHour, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OpeningHour), args.Error(1)
}

func (m *MockOpeningHourService) Create(ctx context.Context, slug string, in *model.OpeningHourInput) (*model.OpeningHour, error) {
	args := m.Called(ctx, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OpeningHour), args.Error(1)
}

func (m *MockOpeningHourService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.OpeningHourInput) (*model.OpeningHour, error) {
	args := m.Called(ctx, slug, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OpeningHour), args.Error(1)
}

func (m *MockOpeningHourService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	args := m.Called(ctx, slug, id)
	return args.Error(0)
}

// MockRestaurantInfoService is a mock implementation of RestaurantInfoService.
type MockRestaurantInfoService struct {
	mock.Mock
}

func (m *MockRestaurantInfoService) Get(ctx context.Context, slug string) (*model.RestaurantInfo, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RestaurantInfo), args.Error(1)
}

func (m *MockRestaurantInfoService) Upsert(ctx context.Context, slug string, in *model.RestaurantInfoInput) (*model.RestaurantInfo, error) {
	args := m.Called(ctx, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RestaurantInfo), args.Error(1)
}

// MockPromoBannerService is a mock implementation of PromoBannerService.
type MockPromoBannerService struct {
	mock.Mock
}

func (m *MockPromoBannerService) List(ctx context.Context, slug string) ([]model.PromoBanner, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerService) ListLive(ctx context.Context, slug string) ([]model.PromoBanner, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerService) Create(ctx context.Context, slug string, in *model.PromoBannerInput) (*model.PromoBanner, error) {
	args := m.Called(ctx, slug, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerService) Update(ctx context.Context, slug string, id uuid.UUID, in *model.PromoBannerInput) (*model.PromoBanner, error) {
	args := m.Called(ctx, slug, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerService) Delete(ctx context.Context, slug string, id uuid.UUID) error {
	args := m.Called(ctx, slug, id)
	return args.Error(0)
}

// MockProfileService is a mock implementation of ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, id uuid.UUID, in *model.ProfileInput) (*model.Profile, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileService) Authenticate(ctx context.Context, email, password string) (*model.Profile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

// MockScreenshotService is a mock implementation of ScreenshotService.
type MockScreenshotService struct {
	mock.Mock
}

func (m *MockScreenshotService) List(ctx context.Context) ([]model.Screenshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Screenshot), args.Error(1)
}

func (m *MockScreenshotService) Upload(ctx context.Context, file upload.File) (*model.Screenshot, error) {
	args := m.Called(ctx, file.Name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Screenshot), args.Error(1)
}

func (m *MockScreenshotService) Remove(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Checkout(ctx context.Context, slug string, req *cart.CheckoutRequest) (*cart.Checkout, error) {
	args := m.Called(ctx, slug, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Checkout), args.Error(1)
}

// MockImageUploader is a mock implementation of upload.ImageUploader.
type MockImageUploader struct {
	mock.Mock
}

func (m *MockImageUploader) Upload(ctx context.Context, src upload.FileSource, opts upload.UploadOptions, progress func(int)) (*upload.UploadResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upload.UploadResult), args.Error(1)
}

func (m *MockImageUploader) Destroy(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}
