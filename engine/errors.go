// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// Error taxonomy. Handlers map these to HTTP statuses; nothing in the engine
// fails silently, and no error leaves a vote partially applied.
var (
	ErrEventNotFound       = errors.New("event not found")
	ErrOptionNotFound      = errors.New("option not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEventNotJoinable    = errors.New("event is not open for joining")
	ErrEventNotVotable     = errors.New("event is not accepting votes")
	ErrVoteLimitReached    = errors.New("vote limit reached")
	ErrDuplicateVote       = errors.New("participant already voted for this option")
	ErrOptionInactive      = errors.New("option is inactive")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
	ErrValidation          = errors.New("validation failed")
)

// isUniqueViolation reports whether err is a uniqueness-constraint failure
// from either supported driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// modernc.org/sqlite does not export a stable error type for this;
	// match the message the way the sqlite docs spell it.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isRetryable reports whether err is transient lock contention that a fresh
// transaction attempt may resolve. Only this class is ever auto-retried.
func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}
