package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type planningRepository struct {
	db *sql.DB
}

// NewPlanningRepository creates a new planning objective repository
func NewPlanningRepository(db *sql.DB) *planningRepository {
	return &planningRepository{
		db: db,
	}
}

const planningColumns = "id, school, class_name, city, target_type, target_level, target_percent, deadline"

// GetForLearner retrieves objectives matching a learner's school and class.
// Class-level objectives match exactly; school-wide objectives (empty
// class_name) match every class in the school.
func (r *planningRepository) GetForLearner(ctx context.Context, school, className string) ([]models.PlanningObjective, error) {
	query := `
		SELECT ` + planningColumns + `
		FROM planning_objectives
		WHERE school = ? AND (class_name = ? OR class_name = '')
		ORDER BY deadline
	`

	rows, err := r.db.QueryContext(ctx, query, school, className)
	if err != nil {
		return nil, fmt.Errorf("failed to query planning objectives: %w", err)
	}
	defer rows.Close()

	return collectObjectives(rows)
}

// GetAll retrieves every objective, nearest deadline first
func (r *planningRepository) GetAll(ctx context.Context) ([]models.PlanningObjective, error) {
	query := `
		SELECT ` + planningColumns + `
		FROM planning_objectives
		ORDER BY deadline
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query planning objectives: %w", err)
	}
	defer rows.Close()

	return collectObjectives(rows)
}

func collectObjectives(rows *sql.Rows) ([]models.PlanningObjective, error) {
	var objectives []models.PlanningObjective
	for rows.Next() {
		var o models.PlanningObjective
		err := rows.Scan(
			&o.ID,
			&o.School,
			&o.ClassName,
			&o.City,
			&o.TargetType,
			&o.TargetLevel,
			&o.TargetPercent,
			&o.Deadline,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planning objective: %w", err)
		}
		objectives = append(objectives, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return objectives, nil
}

// Create inserts a new objective
func (r *planningRepository) Create(ctx context.Context, o *models.PlanningObjective) error {
	query := `
		INSERT INTO planning_objectives (school, class_name, city, target_type, target_level, target_percent, deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		o.School,
		o.ClassName,
		o.City,
		o.TargetType,
		o.TargetLevel,
		o.TargetPercent,
		o.Deadline,
	)
	if err != nil {
		return fmt.Errorf("failed to create planning objective: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted objective id: %w", err)
	}
	o.ID = int(id)

	return nil
}

// Delete removes an objective
func (r *planningRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM planning_objectives WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete planning objective: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("planning objective not found")
	}

	return nil
}
