package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/certifrancais/backend/internal/models"
)

// PlanningRepository defines methods for planning objective data access
type PlanningRepository interface {
	// GetForLearner retrieves objectives for a school, scoped to a class or school-wide
	GetForLearner(ctx context.Context, school, className string) ([]models.PlanningObjective, error)
	// GetAll retrieves every objective
	GetAll(ctx context.Context) ([]models.PlanningObjective, error)
	// Create inserts a new objective
	Create(ctx context.Context, o *models.PlanningObjective) error
	// Delete removes an objective
	Delete(ctx context.Context, id int) error
}

type planningService struct {
	planningRepo PlanningRepository
	userRepo     UserReader
}

// NewPlanningService creates a new planning service
func NewPlanningService(planningRepo PlanningRepository, userRepo UserReader) *planningService {
	return &planningService{
		planningRepo: planningRepo,
		userRepo:     userRepo,
	}
}

// GetForLearner retrieves the objectives that apply to a learner: those of
// their class plus school-wide ones. Learners without a school see none.
func (s *planningService) GetForLearner(ctx context.Context, userID int) ([]models.PlanningObjective, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.School == "" {
		return []models.PlanningObjective{}, nil
	}

	return s.planningRepo.GetForLearner(ctx, user.School, user.ClassName)
}

// GetAll lists every objective for administration
func (s *planningService) GetAll(ctx context.Context) ([]models.PlanningObjective, error) {
	return s.planningRepo.GetAll(ctx)
}

// Create validates and stores a new objective. Certification targets need a
// target level; progression targets need a percentage.
func (s *planningService) Create(ctx context.Context, req models.CreatePlanningObjectiveRequest) (*models.PlanningObjective, error) {
	school := strings.TrimSpace(req.School)
	if school == "" {
		return nil, fmt.Errorf("school is required")
	}
	if req.Deadline.Before(time.Now()) {
		return nil, fmt.Errorf("deadline must be in the future")
	}

	switch req.TargetType {
	case models.PlanningTargetCertification:
		if req.TargetLevel == nil || *req.TargetLevel < 1 {
			return nil, fmt.Errorf("certification objective requires a target level")
		}
	case models.PlanningTargetProgression:
		if req.TargetPercent == nil || *req.TargetPercent < 1 || *req.TargetPercent > 100 {
			return nil, fmt.Errorf("progression objective requires a target percentage between 1 and 100")
		}
	default:
		return nil, fmt.Errorf("invalid target type")
	}

	objective := &models.PlanningObjective{
		School:        school,
		ClassName:     strings.TrimSpace(req.ClassName),
		City:          strings.TrimSpace(req.City),
		TargetType:    req.TargetType,
		TargetLevel:   req.TargetLevel,
		TargetPercent: req.TargetPercent,
		Deadline:      req.Deadline,
	}
	if err := s.planningRepo.Create(ctx, objective); err != nil {
		return nil, fmt.Errorf("failed to create objective: %w", err)
	}

	return objective, nil
}

// Delete removes an objective
func (s *planningService) Delete(ctx context.Context, id int) error {
	if id < 1 {
		return fmt.Errorf("objective id must be positive")
	}
	return s.planningRepo.Delete(ctx, id)
}
