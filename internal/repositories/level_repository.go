package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type levelRepository struct {
	db *sql.DB
}

// NewLevelRepository creates a new level repository
func NewLevelRepository(db *sql.DB) *levelRepository {
	return &levelRepository{
		db: db,
	}
}

// GetByID retrieves a level by its numeric id
func (r *levelRepository) GetByID(ctx context.Context, id int) (*models.Level, error) {
	query := `
		SELECT id, name, position
		FROM levels
		WHERE id = ?
		LIMIT 1
	`

	var l models.Level
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.Name, &l.Position)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("level not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get level: %w", err)
	}

	return &l, nil
}

// GetAll retrieves all levels in display order
func (r *levelRepository) GetAll(ctx context.Context) ([]models.Level, error) {
	query := `
		SELECT id, name, position
		FROM levels
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query levels: %w", err)
	}
	defer rows.Close()

	var levels []models.Level
	for rows.Next() {
		var l models.Level
		if err := rows.Scan(&l.ID, &l.Name, &l.Position); err != nil {
			return nil, fmt.Errorf("failed to scan level: %w", err)
		}
		levels = append(levels, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return levels, nil
}
