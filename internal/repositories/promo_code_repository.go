package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type promoCodeRepository struct {
	db *sql.DB
}

// NewPromoCodeRepository creates a new promo code repository
func NewPromoCodeRepository(db *sql.DB) *promoCodeRepository {
	return &promoCodeRepository{
		db: db,
	}
}

// GetActiveByCode retrieves an active promo code
func (r *promoCodeRepository) GetActiveByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	query := `
		SELECT id, code, level, active
		FROM promo_codes
		WHERE code = ? AND active = TRUE
		LIMIT 1
	`

	var p models.PromoCode
	err := r.db.QueryRowContext(ctx, query, code).Scan(&p.ID, &p.Code, &p.Level, &p.Active)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("promo code not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get promo code: %w", err)
	}

	return &p, nil
}

// Create inserts a new promo code
func (r *promoCodeRepository) Create(ctx context.Context, p *models.PromoCode) error {
	query := `INSERT INTO promo_codes (code, level, active) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, p.Code, p.Level, p.Active)
	if err != nil {
		return fmt.Errorf("failed to create promo code: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted promo code id: %w", err)
	}
	p.ID = int(id)

	return nil
}

// Deactivate turns a promo code off
func (r *promoCodeRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE promo_codes SET active = FALSE WHERE code = ?`

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate promo code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("promo code not found")
	}

	return nil
}
