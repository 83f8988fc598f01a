package services

import "errors"

// Sentinel errors shared across services so handlers can map them to HTTP
// statuses with errors.Is instead of string matching.
var (
	// ErrLevelLocked means the learner has no access to the requested level
	// (not purchased, free quota exhausted, or previous level not validated)
	ErrLevelLocked = errors.New("level is locked")

	// ErrSessionAlreadyEnded means a complete/abandon raced with another
	// request that already ended the session
	ErrSessionAlreadyEnded = errors.New("session already ended")

	// ErrForbidden means the resource belongs to another user
	ErrForbidden = errors.New("forbidden")
)
