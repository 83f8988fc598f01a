package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type pricingRepository struct {
	db *sql.DB
}

// NewPricingRepository creates a new level pricing repository
func NewPricingRepository(db *sql.DB) *pricingRepository {
	return &pricingRepository{
		db: db,
	}
}

// GetByLevel retrieves the pricing row for a level
func (r *pricingRepository) GetByLevel(ctx context.Context, level int) (*models.LevelPricing, error) {
	query := `
		SELECT level, price_cents, currency, free_sessions
		FROM level_pricing
		WHERE level = ?
		LIMIT 1
	`

	var p models.LevelPricing
	err := r.db.QueryRowContext(ctx, query, level).Scan(
		&p.Level,
		&p.PriceCents,
		&p.Currency,
		&p.FreeSessions,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pricing not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}

	return &p, nil
}

// GetAll retrieves pricing for every level, level-ordered
func (r *pricingRepository) GetAll(ctx context.Context) ([]models.LevelPricing, error) {
	query := `
		SELECT level, price_cents, currency, free_sessions
		FROM level_pricing
		ORDER BY level
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing: %w", err)
	}
	defer rows.Close()

	var pricing []models.LevelPricing
	for rows.Next() {
		var p models.LevelPricing
		if err := rows.Scan(&p.Level, &p.PriceCents, &p.Currency, &p.FreeSessions); err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		pricing = append(pricing, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return pricing, nil
}

// Upsert creates or replaces the pricing row for a level
func (r *pricingRepository) Upsert(ctx context.Context, p *models.LevelPricing) error {
	query := `
		INSERT INTO level_pricing (level, price_cents, currency, free_sessions)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE price_cents = VALUES(price_cents),
			currency = VALUES(currency), free_sessions = VALUES(free_sessions)
	`

	if _, err := r.db.ExecContext(ctx, query, p.Level, p.PriceCents, p.Currency, p.FreeSessions); err != nil {
		return fmt.Errorf("failed to upsert pricing: %w", err)
	}

	return nil
}
