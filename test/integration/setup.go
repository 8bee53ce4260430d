package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/realtime"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/upload"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	changeChannel = "storefront_changes_test"
	sessionSecret = "integration-secret"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the storefront schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Stack is one running storefront instance: its own cache, hub and
// listener, sharing the database with every other Stack.
type Stack struct {
	Server   *httptest.Server
	Sessions *auth.Sessions
	Hub      *realtime.Hub
}

// NewStack wires a full instance against pool, using the Postgres broker
// so that instances see each other's writes.
func NewStack(t *testing.T, pool *pgxpool.Pool) *Stack {
	t.Helper()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())

	query := cache.NewQuery(cache.NewMemoryStore(), time.Minute, logger)
	hub := realtime.NewHub(logger)
	broker := realtime.NewPostgresBroker(pool, changeChannel, logger)
	invalidator := realtime.NewInvalidator(query, logger)
	go func() { _ = realtime.Pump(ctx, broker, hub, invalidator, logger) }()
	notify := realtime.NewNotify(query, broker, logger)

	tenantRepo := repository.NewTenantRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)

	resolver := service.NewTenantResolver(tenantRepo)
	tenants := service.NewTenantService(tenantRepo, profileRepo, logger)
	profiles := service.NewProfileService(profileRepo, query, notify, logger)
	menu := service.NewMenuItemService(resolver, repository.NewMenuItemRepository(pool, logger), query, notify, logger)
	hours := service.NewOpeningHourService(resolver, repository.NewOpeningHourRepository(pool, logger), query, notify, logger)
	info := service.NewRestaurantInfoService(resolver, repository.NewRestaurantInfoRepository(pool, logger), query, notify, logger)
	promos := service.NewPromoBannerService(resolver, repository.NewPromoBannerRepository(pool, logger), query, notify, logger)
	pipeline := upload.NewPipeline(nil, nil, 1<<20, logger)
	screenshots := service.NewScreenshotService(nil, pipeline, query, logger)
	carts := service.NewCartService(tenants, menu, info, logger)

	pages, err := handler.NewRenderer(logger)
	if err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}
	sessions := auth.NewSessions(config.AuthConfig{
		SessionSecret: sessionSecret,
		SessionTTL:    time.Hour,
		CookieName:    "storefront_session",
	})

	h := router.Handlers{
		Public:      handler.NewPublicHandler(menu, hours, info, promos, carts, logger),
		Admin:       handler.NewAdminHandler(tenants, menu, hours, info, promos, pipeline, logger),
		Auth:        handler.NewAuthHandler(profiles, tenants, sessions, pages, logger),
		Profile:     handler.NewProfileHandler(profiles, tenants, logger),
		CDN:         handler.NewCDNHandler(upload.NewSigner(config.CDNConfig{}), logger),
		Screenshots: handler.NewScreenshotHandler(screenshots, 1<<20, logger),
		Changes:     handler.NewChangesHandler(hub, nil, logger),
		Pages:       handler.NewPageHandler(tenants, menu, hours, info, promos, screenshots, pages, logger),
	}
	gate := middleware.Gate(sessions, profiles, uuid.New(), "/auth/login", logger)

	srv := httptest.NewServer(router.New(h, gate, nil, logger))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &Stack{Server: srv, Sessions: sessions, Hub: hub}
}

// Client returns an HTTP client that keeps cookies and does not follow
// redirects.
func (s *Stack) Client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"promo_banners", "restaurant_info", "opening_hours", "menu_items", "tenants", "profiles"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}
