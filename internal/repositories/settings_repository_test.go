package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certifrancais/backend/internal/models"
)

// setupSettingsTestRepository creates a settings repository with a mock database
func setupSettingsTestRepository(t *testing.T) (*settingsRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewSettingsRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestSettingsRepository_GetAll(t *testing.T) {
	repo, mock, cleanup := setupSettingsTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("questions_per_test", "25").
		AddRow("anti_cheat_enabled", "true")
	mock.ExpectQuery(`FROM site_settings`).WillReturnRows(rows)

	settings, err := repo.GetAll(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, map[string]string{
		"questions_per_test": "25",
		"anti_cheat_enabled": "true",
	}, settings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_Set(t *testing.T) {
	repo, mock, cleanup := setupSettingsTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO site_settings`).
		WithArgs("footer_text", "Mentions légales").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Set(context.Background(), "footer_text", "Mentions légales")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_GetCapabilities(t *testing.T) {
	repo, mock, cleanup := setupSettingsTestRepository(t)
	defer cleanup()

	// Unknown names stored in the table are dropped on read
	rows := sqlmock.NewRows([]string{"capability"}).
		AddRow(string(models.CapabilityManagePricing)).
		AddRow("legacy_flag_no_longer_known")
	mock.ExpectQuery(`FROM admin_capabilities`).WillReturnRows(rows)

	capabilities, err := repo.GetCapabilities(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []models.Capability{models.CapabilityManagePricing}, capabilities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_SetCapability(t *testing.T) {
	t.Run("stores a known capability", func(t *testing.T) {
		repo, mock, cleanup := setupSettingsTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO admin_capabilities`).
			WithArgs(models.CapabilityManagePricing, true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetCapability(context.Background(), models.CapabilityManagePricing, true)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an unknown capability", func(t *testing.T) {
		repo, mock, cleanup := setupSettingsTestRepository(t)
		defer cleanup()

		err := repo.SetCapability(context.Background(), models.Capability("launch_rockets"), true)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown capability")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
