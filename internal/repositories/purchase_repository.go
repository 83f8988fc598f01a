package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/certifrancais/backend/internal/models"
)

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *sql.DB) *purchaseRepository {
	return &purchaseRepository{
		db: db,
	}
}

// Create inserts a purchase row
func (r *purchaseRepository) Create(ctx context.Context, p *models.UserLevelPurchase) error {
	query := `
		INSERT INTO user_level_purchases (user_id, level, price_paid, payment_ref, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		p.UserID,
		p.Level,
		p.PricePaid,
		p.PaymentRef,
		p.Status,
		p.CreatedAt,
		p.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted purchase id: %w", err)
	}
	p.ID = int(id)

	return nil
}

// GetByPaymentRef retrieves a purchase by its gateway reference
func (r *purchaseRepository) GetByPaymentRef(ctx context.Context, paymentRef string) (*models.UserLevelPurchase, error) {
	query := `
		SELECT id, user_id, level, price_paid, payment_ref, status, created_at, completed_at
		FROM user_level_purchases
		WHERE payment_ref = ?
		LIMIT 1
	`

	var p models.UserLevelPurchase
	err := r.db.QueryRowContext(ctx, query, paymentRef).Scan(
		&p.ID,
		&p.UserID,
		&p.Level,
		&p.PricePaid,
		&p.PaymentRef,
		&p.Status,
		&p.CreatedAt,
		&p.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("purchase not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	return &p, nil
}

// Complete transitions a purchase from pending to completed. The status guard
// makes the transition idempotent across the verify endpoint, the webhook and
// the reconciliation sweep.
func (r *purchaseRepository) Complete(ctx context.Context, paymentRef string) (bool, error) {
	query := `
		UPDATE user_level_purchases
		SET status = ?, completed_at = NOW()
		WHERE payment_ref = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query, models.PurchaseStatusCompleted, paymentRef, models.PurchaseStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to complete purchase: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

// HasCompleted reports whether a completed purchase exists for user and level
func (r *purchaseRepository) HasCompleted(ctx context.Context, userID, level int) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM user_level_purchases
			WHERE user_id = ? AND level = ? AND status = ?
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, level, models.PurchaseStatusCompleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase existence: %w", err)
	}

	return exists, nil
}

// GetPendingOlderThan returns pending purchases created before the cutoff,
// for the reconciliation sweep
func (r *purchaseRepository) GetPendingOlderThan(ctx context.Context, cutoff time.Time) ([]models.UserLevelPurchase, error) {
	query := `
		SELECT id, user_id, level, price_paid, payment_ref, status, created_at, completed_at
		FROM user_level_purchases
		WHERE status = ? AND created_at < ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, models.PurchaseStatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending purchases: %w", err)
	}
	defer rows.Close()

	var purchases []models.UserLevelPurchase
	for rows.Next() {
		var p models.UserLevelPurchase
		err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Level,
			&p.PricePaid,
			&p.PaymentRef,
			&p.Status,
			&p.CreatedAt,
			&p.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return purchases, nil
}
