package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFailedQuestionTestRepository creates a failed question repository with a mock database
func setupFailedQuestionTestRepository(t *testing.T) (*failedQuestionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewFailedQuestionRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestFailedQuestionRepository_Record(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
	}{
		{
			name:         "records a new failed question",
			rowsAffected: 1,
		},
		{
			name:         "no-op when an unremediated row already exists",
			rowsAffected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupFailedQuestionTestRepository(t)
			defer cleanup()

			mock.ExpectExec(`SELECT \?, \?, \?, FALSE FROM DUAL`).
				WithArgs(1, 2, 15, 1, 15).
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))

			err := repo.Record(context.Background(), 1, 2, 15)

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFailedQuestionRepository_GetPendingQuestionIDs(t *testing.T) {
	t.Run("returns pending ids in order", func(t *testing.T) {
		repo, mock, cleanup := setupFailedQuestionTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"question_id"}).AddRow(3).AddRow(15).AddRow(27)
		mock.ExpectQuery(`SELECT question_id`).
			WithArgs(1, 2).
			WillReturnRows(rows)

		ids, err := repo.GetPendingQuestionIDs(context.Background(), 1, 2)

		assert.NoError(t, err)
		assert.Equal(t, []int{3, 15, 27}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing pending", func(t *testing.T) {
		repo, mock, cleanup := setupFailedQuestionTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT question_id`).
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"question_id"}))

		ids, err := repo.GetPendingQuestionIDs(context.Background(), 1, 2)

		assert.NoError(t, err)
		assert.Empty(t, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFailedQuestionRepository_MarkRemediated(t *testing.T) {
	repo, mock, cleanup := setupFailedQuestionTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE failed_questions`).
		WithArgs(1, 15).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkRemediated(context.Background(), 1, 15)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFailedQuestionRepository_CountPending(t *testing.T) {
	repo, mock, cleanup := setupFailedQuestionTestRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(4)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs(1, 2).
		WillReturnRows(rows)

	count, err := repo.CountPending(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
