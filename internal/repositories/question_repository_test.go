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

// setupQuestionTestRepository creates a question repository with a mock database
func setupQuestionTestRepository(t *testing.T) (*questionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewQuestionRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func questionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "content", "type", "level", "rule", "choices", "answer", "explanation"})
}

func TestQuestionRepository_GetByID(t *testing.T) {
	tests := []struct {
		name            string
		setupMock       func(sqlmock.Sqlmock)
		expectedError   string
		expectedChoices []string
	}{
		{
			name: "multiple choice question with choices JSON",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := questionRows().AddRow(
					1, "Il ___ allé au marché.", "multiple_choice", 2,
					"Passé composé avec être", `["est","a","es"]`, "est", "Le verbe aller se conjugue avec être.",
				)
				mock.ExpectQuery(`FROM questions`).WithArgs(1).WillReturnRows(rows)
			},
			expectedChoices: []string{"est", "a", "es"},
		},
		{
			name: "free text question without choices",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := questionRows().AddRow(
					2, "Conjuguez « aller » au présent, 1re personne.", "free_text", 1,
					"", nil, "vais", "",
				)
				mock.ExpectQuery(`FROM questions`).WithArgs(1).WillReturnRows(rows)
			},
			expectedChoices: nil,
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM questions`).WithArgs(1).WillReturnError(sql.ErrNoRows)
			},
			expectedError: "question not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupQuestionTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			question, err := repo.GetByID(context.Background(), 1)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedError, err.Error())
				assert.Nil(t, question)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, question)
				assert.Equal(t, tt.expectedChoices, question.Choices)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQuestionRepository_GetBatchByLevel(t *testing.T) {
	repo, mock, cleanup := setupQuestionTestRepository(t)
	defer cleanup()

	rows := questionRows().
		AddRow(11, "Question A", "free_text", 2, "", nil, "a", "").
		AddRow(12, "Question B", "free_text", 2, "", nil, "b", "")
	mock.ExpectQuery(`FROM questions`).
		WithArgs(2, 10, 20).
		WillReturnRows(rows)

	questions, err := repo.GetBatchByLevel(context.Background(), 2, 20, 10)

	assert.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 11, questions[0].ID)
	assert.Equal(t, 12, questions[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_GetByIDs(t *testing.T) {
	t.Run("empty id list short-circuits", func(t *testing.T) {
		repo, mock, cleanup := setupQuestionTestRepository(t)
		defer cleanup()

		questions, err := repo.GetByIDs(context.Background(), nil)

		assert.NoError(t, err)
		assert.Nil(t, questions)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("retrieves matching questions", func(t *testing.T) {
		repo, mock, cleanup := setupQuestionTestRepository(t)
		defer cleanup()

		rows := questionRows().
			AddRow(3, "Question C", "free_text", 1, "", nil, "c", "").
			AddRow(7, "Question G", "free_text", 1, "", nil, "g", "")
		mock.ExpectQuery(`WHERE id IN`).
			WithArgs(3, 7).
			WillReturnRows(rows)

		questions, err := repo.GetByIDs(context.Background(), []int{3, 7})

		assert.NoError(t, err)
		require.Len(t, questions, 2)
		assert.Equal(t, 3, questions[0].ID)
		assert.Equal(t, 7, questions[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQuestionRepository_Create(t *testing.T) {
	repo, mock, cleanup := setupQuestionTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO questions`).
		WithArgs("Il ___ allé au marché.", models.QuestionTypeMultipleChoice, 2,
			"Passé composé avec être", `["est","a","es"]`, "est", "Le verbe aller se conjugue avec être.").
		WillReturnResult(sqlmock.NewResult(9, 1))

	question := &models.Question{
		Content:     "Il ___ allé au marché.",
		Type:        models.QuestionTypeMultipleChoice,
		Level:       2,
		Rule:        "Passé composé avec être",
		Choices:     []string{"est", "a", "es"},
		Answer:      "est",
		Explanation: "Le verbe aller se conjugue avec être.",
	}
	err := repo.Create(context.Background(), question)

	assert.NoError(t, err)
	assert.Equal(t, 9, question.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionRepository_Update_NotFound(t *testing.T) {
	repo, mock, cleanup := setupQuestionTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE questions`).
		WithArgs("Contenu", models.QuestionTypeFreeText, 1, "", nil, "oui", "", 42).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Question{
		ID:      42,
		Content: "Contenu",
		Type:    models.QuestionTypeFreeText,
		Level:   1,
		Answer:  "oui",
	})

	require.Error(t, err)
	assert.Equal(t, "question not found", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}
