package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"os"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/realtime"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoFixture []byte

type fixture struct {
	Owner struct {
		Email       string `yaml:"email"`
		Password    string `yaml:"password"`
		DisplayName string `yaml:"displayName"`
	} `yaml:"owner"`
	Restaurant string `yaml:"restaurant"`

	Info struct {
		Hero     model.Section `yaml:"hero"`
		About    model.Section `yaml:"about"`
		Phone    string        `yaml:"phone"`
		Email    string        `yaml:"email"`
		Address  string        `yaml:"address"`
		WhatsApp string        `yaml:"whatsapp"`
	} `yaml:"info"`

	Menu []struct {
		Name        string         `yaml:"name"`
		Description string         `yaml:"description"`
		Price       float64        `yaml:"price"`
		Category    model.Category `yaml:"category"`
		Featured    bool           `yaml:"featured"`
		Available   *bool          `yaml:"available"`
	} `yaml:"menu"`

	Hours []struct {
		Day   int    `yaml:"day"`
		Open  string `yaml:"open"`
		Close string `yaml:"close"`
		Slot  int    `yaml:"slot"`
	} `yaml:"hours"`

	Promos []struct {
		Title       string            `yaml:"title"`
		Description string            `yaml:"description"`
		Icon        string            `yaml:"icon"`
		Action      model.PromoAction `yaml:"action"`
	} `yaml:"promos"`
}

func parseFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if f.Restaurant == "" || f.Owner.Email == "" {
		return nil, errors.New("fixture needs a restaurant and an owner email")
	}
	return &f, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := flag.String("file", "", "YAML fixture to load instead of the built-in demo")
	flag.Parse()

	data := demoFixture
	if *path != "" {
		b, err := os.ReadFile(*path)
		if err != nil {
			return fmt.Errorf("failed to read fixture: %w", err)
		}
		data = b
	}
	f, err := parseFixture(data)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Running servers refresh on their own when they listen on the same
	// channel; the seed only needs to publish.
	query := cache.NewQuery(cache.NewMemoryStore(), cfg.Cache.TTL, logger)
	broker := realtime.NewPostgresBroker(pool, cfg.Realtime.Channel, logger)
	notify := realtime.NewNotify(query, broker, logger)

	tenantRepo := repository.NewTenantRepository(pool, logger)
	resolver := service.NewTenantResolver(tenantRepo)
	s := services{
		tenants: service.NewTenantService(tenantRepo, repository.NewProfileRepository(pool, logger), logger),
		menu:    service.NewMenuItemService(resolver, repository.NewMenuItemRepository(pool, logger), query, notify, logger),
		hours:   service.NewOpeningHourService(resolver, repository.NewOpeningHourRepository(pool, logger), query, notify, logger),
		info:    service.NewRestaurantInfoService(resolver, repository.NewRestaurantInfoRepository(pool, logger), query, notify, logger),
		promos:  service.NewPromoBannerService(resolver, repository.NewPromoBannerRepository(pool, logger), query, notify, logger),
	}

	return seed(ctx, s, f, logger)
}

type services struct {
	tenants service.TenantService
	menu    service.MenuItemService
	hours   service.OpeningHourService
	info    service.RestaurantInfoService
	promos  service.PromoBannerService
}

func seed(ctx context.Context, s services, f *fixture, logger zerolog.Logger) error {
	tenant, _, err := s.tenants.Register(ctx, &model.RegisterInput{
		Email:          f.Owner.Email,
		Password:       f.Owner.Password,
		DisplayName:    f.Owner.DisplayName,
		RestaurantName: f.Restaurant,
	})
	if errors.Is(err, model.ErrConflict) {
		logger.Info().Str("email", f.Owner.Email).Msg("owner already exists, nothing to seed")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to register tenant: %w", err)
	}
	slug := tenant.Slug

	if _, err := s.info.Upsert(ctx, slug, &model.RestaurantInfoInput{
		Hero:     &f.Info.Hero,
		About:    &f.Info.About,
		Phone:    &f.Info.Phone,
		Email:    &f.Info.Email,
		Address:  &f.Info.Address,
		WhatsApp: &f.Info.WhatsApp,
	}); err != nil {
		return fmt.Errorf("failed to save restaurant info: %w", err)
	}

	for _, m := range f.Menu {
		available := true
		if m.Available != nil {
			available = *m.Available
		}
		if _, err := s.menu.Create(ctx, slug, &model.MenuItemInput{
			Name:        &m.Name,
			Description: &m.Description,
			Price:       &m.Price,
			Category:    &m.Category,
			Available:   &available,
			Featured:    &m.Featured,
		}); err != nil {
			return fmt.Errorf("failed to create menu item %q: %w", m.Name, err)
		}
	}

	for _, h := range f.Hours {
		if _, err := s.hours.Create(ctx, slug, &model.OpeningHourInput{
			DayOfWeek: &h.Day,
			OpenTime:  &h.Open,
			CloseTime: &h.Close,
			SlotIndex: &h.Slot,
		}); err != nil {
			return fmt.Errorf("failed to create opening hour: %w", err)
		}
	}

	active := true
	for _, p := range f.Promos {
		if _, err := s.promos.Create(ctx, slug, &model.PromoBannerInput{
			Title:       &p.Title,
			Description: &p.Description,
			Icon:        &p.Icon,
			Action:      &p.Action,
			Active:      &active,
		}); err != nil {
			return fmt.Errorf("failed to create promo %q: %w", p.Title, err)
		}
	}

	logger.Info().
		Str("slug", slug).
		Int("menu_items", len(f.Menu)).
		Int("hours", len(f.Hours)).
		Int("promos", len(f.Promos)).
		Msg("demo tenant seeded")
	return nil
}
