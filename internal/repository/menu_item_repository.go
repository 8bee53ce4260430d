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

// menuItemRepository implements the MenuItemRepository interface using PostgreSQL.
type menuItemRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMenuItemRepository creates a new PostgreSQL-backed menu item repository.
func NewMenuItemRepository(pool *pgxpool.Pool, logger zerolog.Logger) MenuItemRepository {
	return &menuItemRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "menu_item").Logger(),
	}
}

const menuItemColumns = `id, tenant_id, name, description, price, category, image_url, available, featured, created_at, updated_at`

func scanMenuItem(row rowScanner) (model.MenuItem, error) {
	var m model.MenuItem
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.Description, &m.Price, &m.Category,
		&m.ImageURL, &m.Available, &m.Featured, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// List returns the tenant's menu, featured items first. With availableOnly
// the public view hides unavailable items.
func (r *menuItemRepository) List(ctx context.Context, tenantID uuid.UUID, availableOnly bool) ([]model.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE tenant_id = $1 AND ($2 = FALSE OR available = TRUE)
		ORDER BY featured DESC, category, name
	`

	rows, err := r.pool.Query(ctx, query, tenantID, availableOnly)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to query menu items")
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []model.MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan menu item row")
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating menu item rows")
		return nil, fmt.Errorf("error iterating menu items: %w", err)
	}

	return items, nil
}

// GetByID returns the item or nil when it does not exist for the tenant.
func (r *menuItemRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.MenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM menu_items WHERE tenant_id = $1 AND id = $2`

	m, err := scanMenuItem(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("menu_item_id", id.String()).Msg("menu item not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to query menu item")
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	return &m, nil
}

// Create inserts a menu item and fills in its timestamps.
func (r *menuItemRepository) Create(ctx context.Context, m *model.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, tenant_id, name, description, price, category, image_url, available, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, m.ID, m.TenantID, m.Name, m.Description, m.Price, m.Category,
		m.ImageURL, m.Available, m.Featured).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", m.TenantID.String()).Msg("failed to create menu item")
		return translate("failed to create menu item", err)
	}

	r.logger.Debug().Str("menu_item_id", m.ID.String()).Msg("menu item created successfully")

	return nil
}

// Update replaces the mutable columns of a tenant's menu item.
func (r *menuItemRepository) Update(ctx context.Context, m *model.MenuItem) error {
	query := `
		UPDATE menu_items
		SET name = $3, description = $4, price = $5, category = $6, image_url = $7,
			available = $8, featured = $9, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, m.TenantID, m.ID, m.Name, m.Description, m.Price, m.Category,
		m.ImageURL, m.Available, m.Featured).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("menu_item_id", m.ID.String()).Msg("failed to update menu item")
		return translate("failed to update menu item", err)
	}

	return nil
}

// Delete removes a tenant's menu item.
func (r *menuItemRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menu_items WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		r.logger.Error().Err(err).Str("menu_item_id", id.String()).Msg("failed to delete menu item")
		return translate("failed to delete menu item", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
