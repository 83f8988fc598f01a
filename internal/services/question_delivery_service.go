package services

import (
	"context"
	"fmt"

	"github.com/certifrancais/backend/internal/models"
)

// QuestionRepository defines methods for question data access
type QuestionRepository interface {
	// GetByID retrieves a question by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the question.
	//
	// Returns the question and an error if any.
	GetByID(ctx context.Context, id int) (*models.Question, error)
	// GetBatchByLevel retrieves an ordered batch of questions for a level
	//
	// "ctx" is the context for the request.
	// "level" is the level of the questions.
	// "offset" is the number of questions to skip.
	// "limit" is the maximum number of questions to return.
	//
	// Returns the questions and an error if any.
	GetBatchByLevel(ctx context.Context, level, offset, limit int) ([]models.Question, error)
	// GetByIDs retrieves questions by their IDs
	//
	// "ctx" is the context for the request.
	// "ids" is the list of question IDs.
	//
	// Returns the questions and an error if any.
	GetByIDs(ctx context.Context, ids []int) ([]models.Question, error)
	// CountByLevel counts the questions available at a level
	//
	// "ctx" is the context for the request.
	// "level" is the level of the questions.
	//
	// Returns the count and an error if any.
	CountByLevel(ctx context.Context, level int) (int, error)
}

// FailedQuestionReader defines read access to pending failed questions
type FailedQuestionReader interface {
	// GetPendingQuestionIDs retrieves the question IDs a user still has to remediate
	GetPendingQuestionIDs(ctx context.Context, userID, level int) ([]int, error)
}

// SiteSettingsProvider exposes the current typed site settings
type SiteSettingsProvider interface {
	// Settings loads the current site settings, falling back to defaults
	Settings(ctx context.Context) (models.SiteSettings, error)
}

type questionDeliveryService struct {
	questionRepo QuestionRepository
	failedRepo   FailedQuestionReader
	settings     SiteSettingsProvider
}

// NewQuestionDeliveryService creates a new question delivery service
func NewQuestionDeliveryService(
	questionRepo QuestionRepository,
	failedRepo FailedQuestionReader,
	settings SiteSettingsProvider,
) *questionDeliveryService {
	return &questionDeliveryService{
		questionRepo: questionRepo,
		failedRepo:   failedRepo,
		settings:     settings,
	}
}

// GetSessionQuestions selects the question batch for one session. Regular
// sessions slice the level's bank into consecutive windows of
// total * percentage / 100 questions; remedial sessions replay the learner's
// pending failed questions instead. Answers and explanations are stripped
// before the questions leave the service.
func (s *questionDeliveryService) GetSessionQuestions(ctx context.Context, userID int, req models.GetSessionQuestionsRequest) ([]models.QuestionResponse, error) {
	if req.Level < 1 {
		return nil, fmt.Errorf("level must be positive")
	}
	if req.SessionNumber < 1 {
		return nil, fmt.Errorf("session number must be positive")
	}

	if req.SessionType == models.SessionTypeRemedial || req.SessionNumber >= models.RemedialSessionNumber {
		return s.remedialBatch(ctx, userID, req.Level)
	}

	return s.regularBatch(ctx, req)
}

func (s *questionDeliveryService) regularBatch(ctx context.Context, req models.GetSessionQuestionsRequest) ([]models.QuestionResponse, error) {
	pct := req.QuestionsPercentage
	if pct == 0 {
		settings, err := s.settings.Settings(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		pct = settings.QuestionsPerTest
	}
	if pct < 1 || pct > 100 {
		return nil, fmt.Errorf("questions percentage must be between 1 and 100")
	}

	total, err := s.questionRepo.CountByLevel(ctx, req.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if total == 0 {
		return []models.QuestionResponse{}, nil
	}

	batch := total * pct / 100
	if batch < 1 {
		batch = 1
	}
	offset := (req.SessionNumber - 1) * batch

	questions, err := s.questionRepo.GetBatchByLevel(ctx, req.Level, offset, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return redactAll(questions), nil
}

func (s *questionDeliveryService) remedialBatch(ctx context.Context, userID, level int) ([]models.QuestionResponse, error) {
	ids, err := s.failedRepo.GetPendingQuestionIDs(ctx, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending failed questions: %w", err)
	}
	// Nothing to remediate is a normal outcome, not an error
	if len(ids) == 0 {
		return []models.QuestionResponse{}, nil
	}

	questions, err := s.questionRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}

	return redactAll(questions), nil
}

func redactAll(questions []models.Question) []models.QuestionResponse {
	responses := make([]models.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, q.Redacted())
	}
	return responses
}
