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

// tenantRepository implements the TenantRepository interface using PostgreSQL.
type tenantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTenantRepository creates a new PostgreSQL-backed tenant repository.
func NewTenantRepository(pool *pgxpool.Pool, logger zerolog.Logger) TenantRepository {
	return &tenantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "tenant").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *tenantRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// GetIDBySlug resolves a slug to the tenant ID.
func (r *tenantRepository) GetIDBySlug(ctx context.Context, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM tenants WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("slug", slug).Msg("tenant not found")
			return uuid.Nil, model.ErrTenantNotFound
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to resolve tenant")
		return uuid.Nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}
	return id, nil
}

// GetBySlug returns the tenant row for slug, or nil when none matches.
func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	query := `
		SELECT id, slug, name, owner_id, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`

	var t model.Tenant
	err := r.pool.QueryRow(ctx, query, slug).Scan(&t.ID, &t.Slug, &t.Name, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query tenant")
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}

	return &t, nil
}

// SlugExists reports whether slug is taken.
func (r *tenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to check slug")
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// ListByOwner returns the tenants owned by a profile, oldest first.
func (r *tenantRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Tenant, error) {
	query := `
		SELECT id, slug, name, owner_id, created_at, updated_at
		FROM tenants
		WHERE owner_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID.String()).Msg("failed to query tenants")
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

// Create inserts a tenant within the provided transaction.
func (r *tenantRepository) Create(ctx context.Context, tx pgx.Tx, t *model.Tenant) error {
	query := `
		INSERT INTO tenants (id, slug, name, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(ctx, query, t.ID, t.Slug, t.Name, t.OwnerID).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", t.Slug).Msg("failed to create tenant")
		return translate("failed to create tenant", err)
	}

	r.logger.Debug().Str("tenant_id", t.ID.String()).Str("slug", t.Slug).Msg("tenant created")

	return nil
}
