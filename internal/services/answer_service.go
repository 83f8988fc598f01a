package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/certifrancais/backend/internal/models"
)

// FailedQuestionRepository defines write access to the failed question log
type FailedQuestionRepository interface {
	// Record logs a question a user answered wrong, unless a pending entry already exists
	Record(ctx context.Context, userID, level, questionID int) error
	// MarkRemediated flips the pending entries for a question the user has now answered correctly
	MarkRemediated(ctx context.Context, userID, questionID int) error
}

type answerService struct {
	questionRepo QuestionRepository
	failedRepo   FailedQuestionRepository
}

// NewAnswerService creates a new answer validation service
func NewAnswerService(questionRepo QuestionRepository, failedRepo FailedQuestionRepository) *answerService {
	return &answerService{
		questionRepo: questionRepo,
		failedRepo:   failedRepo,
	}
}

// ValidateAnswer checks a submitted answer against the stored one.
// Comparison trims whitespace and ignores case; accents are compared as
// written, since accents are part of what the platform certifies.
// Wrong answers are logged for later remediation and get the explanation
// and rule back; correct answers clear any pending remediation entry.
func (s *answerService) ValidateAnswer(ctx context.Context, userID int, req models.ValidateAnswerRequest) (*models.ValidateAnswerResult, error) {
	if req.QuestionID < 1 {
		return nil, fmt.Errorf("question id must be positive")
	}

	question, err := s.questionRepo.GetByID(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	submitted := strings.ToLower(strings.TrimSpace(req.UserAnswer))
	expected := strings.ToLower(strings.TrimSpace(question.Answer))

	if submitted == expected {
		if err := s.failedRepo.MarkRemediated(ctx, userID, question.ID); err != nil {
			return nil, fmt.Errorf("failed to mark question remediated: %w", err)
		}
		return &models.ValidateAnswerResult{IsCorrect: true}, nil
	}

	if err := s.failedRepo.Record(ctx, userID, question.Level, question.ID); err != nil {
		return nil, fmt.Errorf("failed to record failed question: %w", err)
	}

	return &models.ValidateAnswerResult{
		IsCorrect:   false,
		Explanation: question.Explanation,
		Rule:        question.Rule,
	}, nil
}
