package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new site settings repository
func NewSettingsRepository(db *sql.DB) *settingsRepository {
	return &settingsRepository{
		db: db,
	}
}

// GetAll retrieves every settings row as a key/value map
func (r *settingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	query := `SELECT ` + "`key`" + `, value FROM site_settings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return settings, nil
}

// Set creates or replaces one settings row
func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO site_settings (` + "`key`" + `, value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}

	return nil
}

// GetCapabilities retrieves the enabled capability flags. Unknown flag names
// stored in the table are dropped here.
func (r *settingsRepository) GetCapabilities(ctx context.Context) ([]models.Capability, error) {
	query := `SELECT capability FROM admin_capabilities WHERE enabled = TRUE`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query capabilities: %w", err)
	}
	defer rows.Close()

	var capabilities []models.Capability
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan capability: %w", err)
		}
		if models.IsKnownCapability(raw) {
			capabilities = append(capabilities, models.Capability(raw))
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return capabilities, nil
}

// SetCapability enables or disables one capability flag
func (r *settingsRepository) SetCapability(ctx context.Context, capability models.Capability, enabled bool) error {
	if !models.IsKnownCapability(string(capability)) {
		return fmt.Errorf("unknown capability: %s", capability)
	}

	query := `
		INSERT INTO admin_capabilities (capability, enabled)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE enabled = VALUES(enabled)
	`

	if _, err := r.db.ExecContext(ctx, query, capability, enabled); err != nil {
		return fmt.Errorf("failed to set capability: %w", err)
	}

	return nil
}
