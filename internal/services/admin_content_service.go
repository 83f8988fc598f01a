package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/certifrancais/backend/internal/models"
)

// AdminQuestionRepository extends question reads with write access
type AdminQuestionRepository interface {
	QuestionRepository
	// Create inserts a new question
	Create(ctx context.Context, q *models.Question) error
	// Update replaces a question
	Update(ctx context.Context, q *models.Question) error
	// Delete removes a question
	Delete(ctx context.Context, id int) error
}

// PricingWriter writes level pricing rows
type PricingWriter interface {
	// Upsert inserts or replaces the pricing row for a level
	Upsert(ctx context.Context, p *models.LevelPricing) error
}

// PromoCodeWriter writes promo codes
type PromoCodeWriter interface {
	// Create inserts a new promo code
	Create(ctx context.Context, p *models.PromoCode) error
	// Deactivate disables a promo code
	Deactivate(ctx context.Context, code string) error
}

// Authorizer answers capability checks. Capabilities are kill-switches for
// whole admin surfaces, toggled at runtime by super admins.
type Authorizer interface {
	// HasCapability reports whether a capability is currently enabled
	HasCapability(ctx context.Context, capability models.Capability) (bool, error)
}

type adminContentService struct {
	questionRepo AdminQuestionRepository
	pricingRepo  PricingWriter
	promoRepo    PromoCodeWriter
	authorizer   Authorizer
}

// NewAdminContentService creates a new admin content service
func NewAdminContentService(
	questionRepo AdminQuestionRepository,
	pricingRepo PricingWriter,
	promoRepo PromoCodeWriter,
	authorizer Authorizer,
) *adminContentService {
	return &adminContentService{
		questionRepo: questionRepo,
		pricingRepo:  pricingRepo,
		promoRepo:    promoRepo,
		authorizer:   authorizer,
	}
}

func (s *adminContentService) requireCapability(ctx context.Context, capability models.Capability) error {
	enabled, err := s.authorizer.HasCapability(ctx, capability)
	if err != nil {
		return fmt.Errorf("failed to check capability: %w", err)
	}
	if !enabled {
		return fmt.Errorf("capability disabled: %s", capability)
	}
	return nil
}

// CreateQuestion validates and stores a new question. Multiple-choice
// questions need at least two choices and the answer must be one of them.
func (s *adminContentService) CreateQuestion(ctx context.Context, req models.CreateQuestionRequest) (*models.Question, error) {
	if err := s.requireCapability(ctx, models.CapabilityManageQuestions); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	answer := strings.TrimSpace(req.Answer)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	if answer == "" {
		return nil, fmt.Errorf("answer is required")
	}
	if req.Level < 1 {
		return nil, fmt.Errorf("level must be positive")
	}

	questionType := req.Type
	if questionType == "" {
		questionType = models.QuestionTypeFreeText
	}

	question := &models.Question{
		Content:     content,
		Type:        questionType,
		Level:       req.Level,
		Rule:        strings.TrimSpace(req.Rule),
		Choices:     req.Choices,
		Answer:      answer,
		Explanation: strings.TrimSpace(req.Explanation),
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	return question, nil
}

// UpdateQuestion applies a partial update to a question
func (s *adminContentService) UpdateQuestion(ctx context.Context, id int, req models.UpdateQuestionRequest) (*models.Question, error) {
	if err := s.requireCapability(ctx, models.CapabilityManageQuestions); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Content != "" {
		question.Content = strings.TrimSpace(req.Content)
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Level != nil {
		if *req.Level < 1 {
			return nil, fmt.Errorf("level must be positive")
		}
		question.Level = *req.Level
	}
	if req.Rule != nil {
		question.Rule = strings.TrimSpace(*req.Rule)
	}
	if req.Choices != nil {
		question.Choices = req.Choices
	}
	if req.Answer != "" {
		question.Answer = strings.TrimSpace(req.Answer)
	}
	if req.Explanation != nil {
		question.Explanation = strings.TrimSpace(*req.Explanation)
	}

	if err := validateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	return question, nil
}

// DeleteQuestion removes a question from the bank
func (s *adminContentService) DeleteQuestion(ctx context.Context, id int) error {
	if err := s.requireCapability(ctx, models.CapabilityManageQuestions); err != nil {
		return err
	}
	if id < 1 {
		return fmt.Errorf("question id must be positive")
	}
	return s.questionRepo.Delete(ctx, id)
}

// UpsertPricing stores the pricing row for a level
func (s *adminContentService) UpsertPricing(ctx context.Context, pricing models.LevelPricing) error {
	if err := s.requireCapability(ctx, models.CapabilityManagePricing); err != nil {
		return err
	}
	if pricing.Level < 1 {
		return fmt.Errorf("level must be positive")
	}
	if pricing.PriceCents < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if pricing.FreeSessions < 0 {
		return fmt.Errorf("free sessions must not be negative")
	}
	if pricing.Currency == "" {
		pricing.Currency = "eur"
	}

	if err := s.pricingRepo.Upsert(ctx, &pricing); err != nil {
		return fmt.Errorf("failed to upsert pricing: %w", err)
	}
	return nil
}

// CreatePromoCode stores a new active promo code. Level 0 applies anywhere.
func (s *adminContentService) CreatePromoCode(ctx context.Context, code string, level int) (*models.PromoCode, error) {
	if err := s.requireCapability(ctx, models.CapabilityManagePricing); err != nil {
		return nil, err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("code is required")
	}
	if level < 0 {
		return nil, fmt.Errorf("level must not be negative")
	}

	promo := &models.PromoCode{
		Code:   code,
		Level:  level,
		Active: true,
	}
	if err := s.promoRepo.Create(ctx, promo); err != nil {
		return nil, fmt.Errorf("failed to create promo code: %w", err)
	}

	return promo, nil
}

// DeactivatePromoCode disables a promo code
func (s *adminContentService) DeactivatePromoCode(ctx context.Context, code string) error {
	if err := s.requireCapability(ctx, models.CapabilityManagePricing); err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("code is required")
	}
	return s.promoRepo.Deactivate(ctx, code)
}

func validateQuestion(q *models.Question) error {
	switch q.Type {
	case models.QuestionTypeFreeText:
		return nil
	case models.QuestionTypeMultipleChoice:
		if len(q.Choices) < 2 {
			return fmt.Errorf("multiple choice question requires at least two choices")
		}
		for _, c := range q.Choices {
			if strings.EqualFold(strings.TrimSpace(c), q.Answer) {
				return nil
			}
		}
		return fmt.Errorf("answer must be one of the choices")
	default:
		return fmt.Errorf("invalid question type")
	}
}
