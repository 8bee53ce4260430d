package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockTenantRepository is a mock implementation of TenantRepository.
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTenantRepository) GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockTenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Create(ctx context.Context, tx pgx.Tx, tenant *model.Tenant) error {
	args := m.Called(ctx, tx, tenant)
	return args.Error(0)
}

// MockProfileRepository is a mock implementation of ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Profile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, tx pgx.Tx, profile *model.Profile) error {
	args := m.Called(ctx, tx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockResolver is a mock implementation of TenantResolver.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, slug string) (uuid.UUID, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockNotifier records change notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Changed(ctx context.Context, table string, scope uuid.UUID, op model.ChangeOp) {
	m.Called(ctx, table, scope, op)
}

// MockOpeningHourRepository is a mock implementation of OpeningHourRepository.
type MockOpeningHourRepository struct {
	mock.Mock
}

func (m *MockOpeningHourRepository) List(ctx context.Context, tenantID uuid.UUID) ([]model.OpeningHour, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OpeningHour), args.Error(1)
}

func (m *MockOpeningHourRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.OpeningHour, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OpeningHour), args.Error(1)
}

func (m *MockOpeningHourRepository) Create(ctx context.Context, hour *model.OpeningHour) error {
	args := m.Called(ctx, hour)
	return args.Error(0)
}

func (m *MockOpeningHourRepository) Update(ctx context.Context, hour *model.OpeningHour) error {
	args := m.Called(ctx, hour)
	return args.Error(0)
}

func (m *MockOpeningHourRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockRestaurantInfoRepository is a mock implementation of RestaurantInfoRepository.
type MockRestaurantInfoRepository struct {
	mock.Mock
}

func (m *MockRestaurantInfoRepository) Get(ctx context.Context, tenantID uuid.UUID) (*model.RestaurantInfo, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RestaurantInfo), args.Error(1)
}

func (m *MockRestaurantInfoRepository) Upsert(ctx context.Context, info *model.RestaurantInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

// MockPromoBannerRepository is a mock implementation of PromoBannerRepository.
type MockPromoBannerRepository struct {
	mock.Mock
}

func (m *MockPromoBannerRepository) List(ctx context.Context, tenantID uuid.UUID, liveOnly bool) ([]model.PromoBanner, error) {
	args := m.Called(ctx, tenantID, liveOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PromoBanner, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoBanner), args.Error(1)
}

func (m *MockPromoBannerRepository) Create(ctx context.Context, banner *model.PromoBanner) error {
	args := m.Called(ctx, banner)
	return args.Error(0)
}

func (m *MockPromoBannerRepository) Update(ctx context.Context, banner *model.PromoBanner) error {
	args := m.Called(ctx, banner)
	return args.Error(0)
}

func (m *MockPromoBannerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
