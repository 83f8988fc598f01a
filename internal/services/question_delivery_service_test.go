package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/certifrancais/backend/internal/models"
)

// mockQuestionRepository is a mock implementation of QuestionRepository
type mockQuestionRepository struct {
	question     *models.Question
	questions    []models.Question
	total        int
	err          error
	countErr     error
	gotOffset    int
	gotLimit     int
	gotIDs       []int
	createErr    error
	updateErr    error
	deleteErr    error
	lastCreated  *models.Question
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id int) (*models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.question, nil
}

func (m *mockQuestionRepository) GetBatchByLevel(ctx context.Context, level, offset, limit int) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.gotOffset = offset
	m.gotLimit = limit
	return m.questions, nil
}

func (m *mockQuestionRepository) GetByIDs(ctx context.Context, ids []int) ([]models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.gotIDs = ids
	return m.questions, nil
}

func (m *mockQuestionRepository) CountByLevel(ctx context.Context, level int) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.total, nil
}

func (m *mockQuestionRepository) Create(ctx context.Context, q *models.Question) error {
	m.lastCreated = q
	return m.createErr
}

func (m *mockQuestionRepository) Update(ctx context.Context, q *models.Question) error {
	return m.updateErr
}

func (m *mockQuestionRepository) Delete(ctx context.Context, id int) error {
	return m.deleteErr
}

// mockFailedQuestionRepository is a mock implementation of FailedQuestionRepository
type mockFailedQuestionRepository struct {
	pendingIDs     []int
	pending        int
	err            error
	recorded       []int
	remediated     []int
	recordErr      error
	remediateErr   error
}

func (m *mockFailedQuestionRepository) GetPendingQuestionIDs(ctx context.Context, userID, level int) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pendingIDs, nil
}

func (m *mockFailedQuestionRepository) CountPending(ctx context.Context, userID, level int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.pending, nil
}

func (m *mockFailedQuestionRepository) Record(ctx context.Context, userID, level, questionID int) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.recorded = append(m.recorded, questionID)
	return nil
}

func (m *mockFailedQuestionRepository) MarkRemediated(ctx context.Context, userID, questionID int) error {
	if m.remediateErr != nil {
		return m.remediateErr
	}
	m.remediated = append(m.remediated, questionID)
	return nil
}

// mockSettingsProvider is a mock implementation of SiteSettingsProvider
type mockSettingsProvider struct {
	settings models.SiteSettings
	err      error
}

func (m *mockSettingsProvider) Settings(ctx context.Context) (models.SiteSettings, error) {
	if m.err != nil {
		return models.SiteSettings{}, m.err
	}
	return m.settings, nil
}

func TestQuestionDeliveryService_GetSessionQuestions_Regular(t *testing.T) {
	tests := []struct {
		name           string
		req            models.GetSessionQuestionsRequest
		total          int
		expectedOffset int
		expectedLimit  int
		expectedError  bool
	}{
		{
			name: "first session slices first window",
			req: models.GetSessionQuestionsRequest{
				Level:               1,
				SessionNumber:       1,
				QuestionsPercentage: 20,
			},
			total:          50,
			expectedOffset: 0,
			expectedLimit:  10,
		},
		{
			name: "third session skips two windows",
			req: models.GetSessionQuestionsRequest{
				Level:               1,
				SessionNumber:       3,
				QuestionsPercentage: 20,
			},
			total:          50,
			expectedOffset: 20,
			expectedLimit:  10,
		},
		{
			name: "tiny bank still yields one question per session",
			req: models.GetSessionQuestionsRequest{
				Level:               2,
				SessionNumber:       2,
				QuestionsPercentage: 10,
			},
			total:          3,
			expectedOffset: 1,
			expectedLimit:  1,
		},
		{
			name: "percentage above 100 rejected",
			req: models.GetSessionQuestionsRequest{
				Level:               1,
				SessionNumber:       1,
				QuestionsPercentage: 150,
			},
			total:         50,
			expectedError: true,
		},
		{
			name: "zero level rejected",
			req: models.GetSessionQuestionsRequest{
				Level:         0,
				SessionNumber: 1,
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questionRepo := &mockQuestionRepository{
				total: tt.total,
				questions: []models.Question{
					{ID: 1, Content: "Accordez : les fleurs que j'ai (cueillir)", Answer: "cueillies"},
				},
			}
			svc := NewQuestionDeliveryService(questionRepo, &mockFailedQuestionRepository{}, &mockSettingsProvider{
				settings: models.DefaultSiteSettings(),
			})

			questions, err := svc.GetSessionQuestions(context.Background(), 1, tt.req)

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedOffset, questionRepo.gotOffset)
			assert.Equal(t, tt.expectedLimit, questionRepo.gotLimit)
			assert.Len(t, questions, 1)
		})
	}
}

func TestQuestionDeliveryService_GetSessionQuestions_DefaultPercentage(t *testing.T) {
	questionRepo := &mockQuestionRepository{total: 100}
	svc := NewQuestionDeliveryService(questionRepo, &mockFailedQuestionRepository{}, &mockSettingsProvider{
		settings: models.SiteSettings{QuestionsPerTest: 25},
	})

	_, err := svc.GetSessionQuestions(context.Background(), 1, models.GetSessionQuestionsRequest{
		Level:         1,
		SessionNumber: 1,
	})

	assert.NoError(t, err)
	assert.Equal(t, 25, questionRepo.gotLimit)
}

func TestQuestionDeliveryService_GetSessionQuestions_EmptyBank(t *testing.T) {
	svc := NewQuestionDeliveryService(&mockQuestionRepository{total: 0}, &mockFailedQuestionRepository{}, &mockSettingsProvider{
		settings: models.DefaultSiteSettings(),
	})

	questions, err := svc.GetSessionQuestions(context.Background(), 1, models.GetSessionQuestionsRequest{
		Level:               1,
		SessionNumber:       1,
		QuestionsPercentage: 20,
	})

	assert.NoError(t, err)
	assert.Empty(t, questions)
}

func TestQuestionDeliveryService_GetSessionQuestions_Remedial(t *testing.T) {
	tests := []struct {
		name          string
		pendingIDs    []int
		questions     []models.Question
		expectedCount int
	}{
		{
			name:       "pending failures replayed",
			pendingIDs: []int{4, 9},
			questions: []models.Question{
				{ID: 4, Content: "q4", Answer: "a"},
				{ID: 9, Content: "q9", Answer: "b"},
			},
			expectedCount: 2,
		},
		{
			name:          "nothing pending yields empty list",
			pendingIDs:    nil,
			expectedCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questionRepo := &mockQuestionRepository{questions: tt.questions}
			failedRepo := &mockFailedQuestionRepository{pendingIDs: tt.pendingIDs}
			svc := NewQuestionDeliveryService(questionRepo, failedRepo, &mockSettingsProvider{})

			questions, err := svc.GetSessionQuestions(context.Background(), 7, models.GetSessionQuestionsRequest{
				Level:         2,
				SessionNumber: models.RemedialSessionNumber,
				SessionType:   models.SessionTypeRemedial,
			})

			assert.NoError(t, err)
			assert.Len(t, questions, tt.expectedCount)
		})
	}
}

func TestQuestionDeliveryService_GetSessionQuestions_RedactsAnswers(t *testing.T) {
	questionRepo := &mockQuestionRepository{
		total: 10,
		questions: []models.Question{
			{ID: 1, Content: "q", Answer: "secret", Explanation: "because", Rule: "accord du participe"},
		},
	}
	svc := NewQuestionDeliveryService(questionRepo, &mockFailedQuestionRepository{}, &mockSettingsProvider{
		settings: models.DefaultSiteSettings(),
	})

	questions, err := svc.GetSessionQuestions(context.Background(), 1, models.GetSessionQuestionsRequest{
		Level:               1,
		SessionNumber:       1,
		QuestionsPercentage: 20,
	})

	assert.NoError(t, err)
	assert.Len(t, questions, 1)
	// The response type has no answer or explanation field at all
	assert.Equal(t, "accord du participe", questions[0].Rule)
	assert.Equal(t, "q", questions[0].Content)
}

func TestQuestionDeliveryService_GetSessionQuestions_RepoError(t *testing.T) {
	svc := NewQuestionDeliveryService(&mockQuestionRepository{countErr: errors.New("db down")}, &mockFailedQuestionRepository{}, &mockSettingsProvider{
		settings: models.DefaultSiteSettings(),
	})

	_, err := svc.GetSessionQuestions(context.Background(), 1, models.GetSessionQuestionsRequest{
		Level:               1,
		SessionNumber:       1,
		QuestionsPercentage: 20,
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count questions")
}
