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

type promoBannerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoBannerRepository creates a new PostgreSQL-backed promo banner repository.
func NewPromoBannerRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoBannerRepository {
	return &promoBannerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo_banner").Logger(),
	}
}

const promoBannerColumns = `id, tenant_id, title, description, image_url, icon, action, active, expires_at, created_at, updated_at`

func scanPromoBanner(row rowScanner) (model.PromoBanner, error) {
	var p model.PromoBanner
	err := row.Scan(&p.ID, &p.TenantID, &p.Title, &p.Description, &p.ImageURL, &p.Icon,
		&p.Action, &p.Active, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns the tenant's banners, newest first. liveOnly keeps active
// banners that have not expired.
func (r *promoBannerRepository) List(ctx context.Context, tenantID uuid.UUID, liveOnly bool) ([]model.PromoBanner, error) {
	query := `
		SELECT ` + promoBannerColumns + `
		FROM promo_banners
		WHERE tenant_id = $1
		  AND ($2 = FALSE OR (active = TRUE AND (expires_at IS NULL OR expires_at > NOW())))
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, tenantID, liveOnly)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to query promo banners")
		return nil, fmt.Errorf("failed to query promo banners: %w", err)
	}
	defer rows.Close()

	banners := []model.PromoBanner{}
	for rows.Next() {
		p, err := scanPromoBanner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan promo banner: %w", err)
		}
		banners = append(banners, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo banners: %w", err)
	}

	return banners, nil
}

func (r *promoBannerRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.PromoBanner, error) {
	query := `SELECT ` + promoBannerColumns + ` FROM promo_banners WHERE tenant_id = $1 AND id = $2`

	p, err := scanPromoBanner(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("promo_banner_id", id.String()).Msg("failed to query promo banner")
		return nil, fmt.Errorf("failed to query promo banner: %w", err)
	}

	return &p, nil
}

func (r *promoBannerRepository) Create(ctx context.Context, p *model.PromoBanner) error {
	query := `
		INSERT INTO promo_banners (id, tenant_id, title, description, image_url, icon, action, active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, p.ID, p.TenantID, p.Title, p.Description, p.ImageURL, p.Icon,
		p.Action, p.Active, p.ExpiresAt).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", p.TenantID.String()).Msg("failed to create promo banner")
		return translate("failed to create promo banner", err)
	}

	return nil
}

func (r *promoBannerRepository) Update(ctx context.Context, p *model.PromoBanner) error {
	query := `
		UPDATE promo_banners
		SET title = $3, description = $4, image_url = $5, icon = $6, action = $7,
			active = $8, expires_at = $9, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, p.TenantID, p.ID, p.Title, p.Description, p.ImageURL, p.Icon,
		p.Action, p.Active, p.ExpiresAt).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("promo_banner_id", p.ID.String()).Msg("failed to update promo banner")
		return translate("failed to update promo banner", err)
	}

	return nil
}

func (r *promoBannerRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM promo_banners WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		r.logger.Error().Err(err).Str("promo_banner_id", id.String()).Msg("failed to delete promo banner")
		return translate("failed to delete promo banner", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
