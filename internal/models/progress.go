package models

// SessionState is the derived display state of one session slot in a level
type SessionState string

const (
	SessionStateLocked    SessionState = "locked"
	SessionStateAvailable SessionState = "available"
	SessionStateCurrent   SessionState = "current"
	SessionStateCompleted SessionState = "completed"
)

// SessionProgressItem is one session slot with its derived state
type SessionProgressItem struct {
	SessionNumber int          `json:"session_number"`
	Label         string       `json:"label"`
	State         SessionState `json:"state"`
	Score         int          `json:"score,omitempty"`
}

// LevelProgress summarizes a learner's standing on one level.
// Invariant: CompletedSessions <= TotalSessions.
type LevelProgress struct {
	Level             int                   `json:"level"`
	LevelName         string                `json:"level_name"`
	TotalSessions     int                   `json:"total_sessions"`
	CompletedSessions int                   `json:"completed_sessions"`
	CurrentSession    int                   `json:"current_session"`
	Sessions          []SessionProgressItem `json:"sessions"`
	RemedialRequired  bool                  `json:"remedial_required"`
	Validated         bool                  `json:"validated"`
}

// Level represents a named difficulty tier
type Level struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}
