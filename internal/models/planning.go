package models

import "time"

// PlanningTargetType enumerates planning objective targets
type PlanningTargetType string

const (
	PlanningTargetCertification PlanningTargetType = "certification"
	PlanningTargetProgression   PlanningTargetType = "progression"
)

// PlanningObjective is a school/class-scoped deadline target. Read-only input
// for learner countdown displays; never mutated by learner actions.
type PlanningObjective struct {
	ID            int                `json:"id"`
	School        string             `json:"school"`
	ClassName     string             `json:"class_name,omitempty"`
	City          string             `json:"city,omitempty"`
	TargetType    PlanningTargetType `json:"target_type"`
	TargetLevel   *int               `json:"target_level,omitempty"`   // certification target
	TargetPercent *int               `json:"target_percent,omitempty"` // progression target
	Deadline      time.Time          `json:"deadline"`
}

// CreatePlanningObjectiveRequest represents an admin request to create an objective
type CreatePlanningObjectiveRequest struct {
	School        string             `json:"school"`
	ClassName     string             `json:"class_name,omitempty"`
	City          string             `json:"city,omitempty"`
	TargetType    PlanningTargetType `json:"target_type"`
	TargetLevel   *int               `json:"target_level,omitempty"`
	TargetPercent *int               `json:"target_percent,omitempty"`
	Deadline      time.Time          `json:"deadline"`
}
