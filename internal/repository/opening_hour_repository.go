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

type openingHourRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOpeningHourRepository creates a new PostgreSQL-backed opening hour repository.
func NewOpeningHourRepository(pool *pgxpool.Pool, logger zerolog.Logger) OpeningHourRepository {
	return &openingHourRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "opening_hour").Logger(),
	}
}

const openingHourColumns = `id, tenant_id, day_of_week, open_time, close_time, slot_index, created_at, updated_at`

func scanOpeningHour(row rowScanner) (model.OpeningHour, error) {
	var h model.OpeningHour
	err := row.Scan(&h.ID, &h.TenantID, &h.DayOfWeek, &h.OpenTime, &h.CloseTime, &h.SlotIndex, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

// List returns the tenant's hours ordered by day and slot.
func (r *openingHourRepository) List(ctx context.Context, tenantID uuid.UUID) ([]model.OpeningHour, error) {
	query := `
		SELECT ` + openingHourColumns + `
		FROM opening_hours
		WHERE tenant_id = $1
		ORDER BY day_of_week, slot_index
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		r.logger.Error().Err(err).Str("tenant_id", tenantID.String()).Msg("failed to query opening hours")
		return nil, fmt.Errorf("failed to query opening hours: %w", err)
	}
	defer rows.Close()

	hours := []model.OpeningHour{}
	for rows.Next() {
		h, err := scanOpeningHour(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opening hour: %w", err)
		}
		hours = append(hours, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating opening hours: %w", err)
	}

	return hours, nil
}

func (r *openingHourRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.OpeningHour, error) {
	query := `SELECT ` + openingHourColumns + ` FROM opening_hours WHERE tenant_id = $1 AND id = $2`

	h, err := scanOpeningHour(r.pool.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("opening_hour_id", id.String()).Msg("failed to query opening hour")
		return nil, fmt.Errorf("failed to query opening hour: %w", err)
	}

	return &h, nil
}

func (r *openingHourRepository) Create(ctx context.Context, h *model.OpeningHour) error {
	query := `
		INSERT INTO opening_hours (id, tenant_id, day_of_week, open_time, close_time, slot_index)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, h.ID, h.TenantID, h.DayOfWeek, h.OpenTime, h.CloseTime, h.SlotIndex).
		Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Str("tenant_id", h.TenantID.String()).
			Int("day_of_week", h.DayOfWeek).
			Int("slot_index", h.SlotIndex).
			Msg("failed to create opening hour")
		return translate("failed to create opening hour", err)
	}

	return nil
}

func (r *openingHourRepository) Update(ctx context.Context, h *model.OpeningHour) error {
	query := `
		UPDATE opening_hours
		SET day_of_week = $3, open_time = $4, close_time = $5, slot_index = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, h.TenantID, h.ID, h.DayOfWeek, h.OpenTime, h.CloseTime, h.SlotIndex).Scan(&h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		r.logger.Error().Err(err).Str("opening_hour_id", h.ID.String()).Msg("failed to update opening hour")
		return translate("failed to update opening hour", err)
	}

	return nil
}

func (r *openingHourRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM opening_hours WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		r.logger.Error().Err(err).Str("opening_hour_id", id.String()).Msg("failed to delete opening hour")
		return translate("failed to delete opening hour", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
