package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type restaurantInfoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRestaurantInfoRepository creates a new PostgreSQL-backed restaurant info repository.
func NewRestaurantInfoRepository(pool *pgxpool.Pool, logger zerolog.Logger) RestaurantInfoRepository {
	return &restaurantInfoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "restaurant_info").Logger(),
	}
}

// Get returns the tenant's info row or nil when it was never saved.
func (r *restaurantInfoRepository) Get(ctx context.Context, tenantID uuid.UUID) (*model.RestaurantInfo, error) {
	query := `
		SELECT id, tenant_id, hero, about, menu, phone, email, address, whatsapp, additional, created_at, updated_at
		FROM restaurant_info
		WHERE tenant_id = $1
	`

	var info model.RestaurantInfo
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&info.ID, &info.TenantID, &info.Hero, &info.About, &info.Menu,
		&info.Phone, &info.Email, &info.Address, &info.WhatsApp, &info.Additional,
		&info.CreatedAt, &info.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to query restaurant info")
		return nil, fmt.Errorf("failed to query restaurant info: %w", err)
	}

	return &info, nil
}

// Upsert inserts or replaces the row keyed on tenant_id. The stored ID and
// creation time survive replacement.
func (r *restaurantInfoRepository) Upsert(ctx context.Context, info *model.RestaurantInfo) error {
	query := `
		INSERT INTO restaurant_info (id, tenant_id, hero, about, menu, phone, email, address, whatsapp, additional)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tenant_id) DO UPDATE SET
			hero = EXCLUDED.hero,
			about = EXCLUDED.about,
			menu = EXCLUDED.menu,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			address = EXCLUDED.address,
			whatsapp = EXCLUDED.whatsapp,
			additional = EXCLUDED.additional,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	additional := info.Additional
	if additional == nil {
		additional = map[string]any{}
	}

	err := r.pool.QueryRow(ctx, query,
		info.ID, info.TenantID, info.Hero, info.About, info.Menu,
		info.Phone, info.Email, info.Address, info.WhatsApp, additional,
	).Scan(&info.ID, &info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", info.TenantID.String()).Msg("failed to upsert restaurant info")
		return translate("failed to upsert restaurant info", err)
	}

	return nil
}
