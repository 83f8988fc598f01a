package models

import (
	"fmt"
	"time"
)

// SessionType distinguishes regular sessions from remedial (rattrapage) ones
type SessionType string

const (
	SessionTypeRegular  SessionType = "regular"
	SessionTypeRemedial SessionType = "remedial"
)

// SessionStatus is the lifecycle status of a test session
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusFailed     SessionStatus = "failed"
	SessionStatusAbandoned  SessionStatus = "abandoned"
)

// PassThreshold is the minimum score (percent) for a session to count as
// completed, for both regular and remedial sessions.
const PassThreshold = 75

// RemedialSessionNumber is the conventional number reserved for rattrapage
// sessions. Session numbers at or above it are treated as remedial.
const RemedialSessionNumber = 99

// TestSession represents one scored batch of questions taken by a learner.
// Sessions are soft-deleted only, never physically removed.
type TestSession struct {
	ID            int           `json:"id"`
	UserID        int           `json:"user_id"`
	Level         int           `json:"level"`
	SessionNumber int           `json:"session_number"`
	SessionType   SessionType   `json:"session_type"`
	Status        SessionStatus `json:"status"`
	Score         int           `json:"score"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
	DeletedAt     *time.Time    `json:"-"`
}

// IsRemedial reports whether the session number falls in the rattrapage range
func (s TestSession) IsRemedial() bool {
	return s.SessionNumber >= RemedialSessionNumber || s.SessionType == SessionTypeRemedial
}

// SessionLabel renders a session number for display: regular sessions as
// "level.number", rattrapage sessions with an .R suffix instead of a decimal.
func SessionLabel(level, sessionNumber int) string {
	if sessionNumber >= RemedialSessionNumber {
		return fmt.Sprintf("%d.R", level)
	}
	return fmt.Sprintf("%d.%d", level, sessionNumber)
}

// StartSessionRequest represents a request to begin a session
type StartSessionRequest struct {
	Level         int         `json:"level"`
	SessionNumber int         `json:"session_number"`
	SessionType   SessionType `json:"session_type"`
}

// CompleteSessionRequest carries the final score of a session
type CompleteSessionRequest struct {
	Score int `json:"score"`
}

// CompleteSessionResult reports what completion changed
type CompleteSessionResult struct {
	Completed        bool   `json:"completed"`
	Score            int    `json:"score"`
	LevelValidated   bool   `json:"level_validated"`
	CredentialID     string `json:"credential_id,omitempty"`
	RemedialRequired bool   `json:"remedial_required"`
}

// AbandonSessionRequest carries the reason a session was terminated client-side
// (anti-cheat threshold reached, window closed)
type AbandonSessionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// GetSessionQuestionsRequest selects the question batch for a session
type GetSessionQuestionsRequest struct {
	Level               int         `json:"level"`
	SessionNumber       int         `json:"session_number"`
	SessionType         SessionType `json:"session_type"`
	QuestionsPercentage int         `json:"questions_percentage,omitempty"`
}

// FailedQuestion records a question a learner got wrong, pending remediation
type FailedQuestion struct {
	ID           int  `json:"id"`
	UserID       int  `json:"user_id"`
	Level        int  `json:"level"`
	QuestionID   int  `json:"question_id"`
	IsRemediated bool `json:"is_remediated"`
}
