package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certifrancais/backend/internal/models"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "school", "class_name", "password_hash", "role"})
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("claire@example.com", "Claire", "Martin", "Lycée Hugo", "Terminale B", "hashed", models.RoleLearner).
		WillReturnResult(sqlmock.NewResult(12, 1))

	user := &models.User{
		Email:        "claire@example.com",
		FirstName:    "Claire",
		LastName:     "Martin",
		School:       "Lycée Hugo",
		ClassName:    "Terminale B",
		PasswordHash: "hashed",
		Role:         models.RoleLearner,
	}
	err := repo.Create(context.Background(), user)

	assert.NoError(t, err)
	assert.Equal(t, 12, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := userRows().AddRow(12, "claire@example.com", "Claire", "Martin", "Lycée Hugo", "Terminale B", "hashed", models.RoleLearner)
				mock.ExpectQuery(`FROM users`).
					WithArgs("claire@example.com").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).
					WithArgs("claire@example.com").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByEmail(context.Background(), "claire@example.com")

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError, err.Error())
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, "Claire", user.FirstName)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Delete(t *testing.T) {
	tests := []struct {
		name             string
		rowsAffected     int64
		expectedAffected int
	}{
		{
			name:             "deletes an existing user",
			rowsAffected:     1,
			expectedAffected: 1,
		},
		{
			name:             "already deleted",
			rowsAffected:     0,
			expectedAffected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`DELETE FROM users`).
				WithArgs(12).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			affected, err := repo.Delete(context.Background(), 12)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedAffected, affected)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetAll(t *testing.T) {
	t.Run("pagination only", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		rows := userRows().
			AddRow(1, "a@example.com", "A", "", "", "", "h", models.RoleLearner).
			AddRow(2, "b@example.com", "B", "", "", "", "h", models.RoleAdmin)
		mock.ExpectQuery(`FROM users`).
			WithArgs(20, 20).
			WillReturnRows(rows)

		users, err := repo.GetAll(context.Background(), 2, 20, nil, "")

		assert.NoError(t, err)
		assert.Len(t, users, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("role and search filters", func(t *testing.T) {
		repo, mock, cleanup := setupUserTestRepository(t)
		defer cleanup()

		role := models.RoleLearner
		rows := userRows().
			AddRow(1, "claire@example.com", "Claire", "Martin", "", "", "h", models.RoleLearner)
		mock.ExpectQuery(`FROM users`).
			WithArgs(role, "%claire%", "%claire%", "%claire%", 10, 0).
			WillReturnRows(rows)

		users, err := repo.GetAll(context.Background(), 1, 10, &role, "claire")

		assert.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "claire@example.com", users[0].Email)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
