package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/realtime"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/upload"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	metrics.Init()

	// Query cache: Redis when configured, otherwise in process
	store, err := newCacheStore(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	query := cache.NewQuery(store, cfg.Cache.TTL, logger)

	// Change notification
	hub := realtime.NewHub(logger)
	broker, err := newBroker(cfg.Realtime, pool, hub, logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	invalidator := realtime.NewInvalidator(query, logger)
	go func() {
		if err := realtime.Pump(ctx, broker, hub, invalidator, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("change listener stopped")
		}
	}()
	notify := realtime.NewNotify(query, broker, logger)

	// Uploads
	signer := upload.NewSigner(cfg.CDN)
	var cdn upload.ImageUploader
	if signer.Enabled() {
		cdn = upload.NewCDNClient(cfg.CDN, signer, &http.Client{Timeout: 60 * time.Second}, logger)
	} else {
		logger.Warn().Msg("CDN signing disabled, image uploads will fail")
	}

	var bucket upload.ObjectStore
	if cfg.S3.Enabled {
		b, err := upload.NewBucketStore(ctx, cfg.S3, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise screenshot bucket, screenshots disabled")
		} else {
			bucket = b
		}
	} else {
		logger.Info().Msg("screenshot bucket disabled")
	}
	pipeline := upload.NewPipeline(cdn, bucket, cfg.Upload.MaxBytes, logger)

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)
	menuRepo := repository.NewMenuItemRepository(pool, logger)
	hourRepo := repository.NewOpeningHourRepository(pool, logger)
	infoRepo := repository.NewRestaurantInfoRepository(pool, logger)
	promoRepo := repository.NewPromoBannerRepository(pool, logger)

	// Initialize services
	resolver := service.NewTenantResolver(tenantRepo)
	tenantService := service.NewTenantService(tenantRepo, profileRepo, logger)
	profileService := service.NewProfileService(profileRepo, query, notify, logger)
	menuService := service.NewMenuItemService(resolver, menuRepo, query, notify, logger)
	hourService := service.NewOpeningHourService(resolver, hourRepo, query, notify, logger)
	infoService := service.NewRestaurantInfoService(resolver, infoRepo, query, notify, logger)
	promoService := service.NewPromoBannerService(resolver, promoRepo, query, notify, logger)
	screenshotService := service.NewScreenshotService(bucket, pipeline, query, logger)
	cartService := service.NewCartService(tenantService, menuService, infoService, logger)

	// Initialize HTTP handlers
	pages, err := handler.NewRenderer(logger)
	if err != nil {
		return fmt.Errorf("failed to load page templates: %w", err)
	}
	sessions := auth.NewSessions(cfg.Auth)

	handlers := router.Handlers{
		Public:      handler.NewPublicHandler(menuService, hourService, infoService, promoService, cartService, logger),
		Admin:       handler.NewAdminHandler(tenantService, menuService, hourService, infoService, promoService, pipeline, logger),
		Auth:        handler.NewAuthHandler(profileService, tenantService, sessions, pages, logger),
		Profile:     handler.NewProfileHandler(profileService, tenantService, logger),
		CDN:         handler.NewCDNHandler(signer, logger),
		Screenshots: handler.NewScreenshotHandler(screenshotService, cfg.Upload.MaxBytes, logger),
		Changes:     handler.NewChangesHandler(hub, originPatterns(cfg.Server.Origins()), logger),
		Pages:       handler.NewPageHandler(tenantService, menuService, hourService, infoService, promoService, screenshotService, pages, logger),
	}

	privilegedID := uuid.MustParse(cfg.Auth.PrivilegedUserID)
	gate := middleware.Gate(sessions, profileService, privilegedID, cfg.Auth.LoginPath, logger)

	// Initialize router
	mux := router.New(handlers, gate, cfg.Server.Origins(), logger)

	// Create HTTP server. No write timeout: change streams stay open.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Stop listeners and close change streams first
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server stopped gracefully")
	}

	return nil
}

func newCacheStore(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (cache.Store, error) {
	if cfg.RedisURL == "" {
		logger.Info().Msg("using in-memory query cache")
		return cache.NewMemoryStore(), nil
	}

	client, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to redis, falling back to in-memory query cache")
		return cache.NewMemoryStore(), nil
	}
	logger.Info().Msg("using redis query cache")
	return cache.NewRedisStore(client, "storefront"), nil
}

func newBroker(cfg config.RealtimeConfig, pool *pgxpool.Pool, hub *realtime.Hub, logger zerolog.Logger) (realtime.Broker, error) {
	switch cfg.Driver {
	case "amqp":
		b, err := realtime.NewAMQPBroker(cfg.AMQPURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		return b, nil
	case "local":
		return realtime.NewLocalBroker(hub), nil
	default:
		return realtime.NewPostgresBroker(pool, cfg.Channel, logger), nil
	}
}

// originPatterns turns CORS origins into websocket host patterns.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if i := strings.Index(o, "://"); i >= 0 {
			o = o[i+3:]
		}
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
