// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/middleware"
)

// writeEngineError maps the engine's error taxonomy to HTTP statuses.
// ConcurrencyConflict reaches here only after the engine's own retries are
// exhausted; it is the one status a client should retry.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrEventNotFound),
		errors.Is(err, engine.ErrOptionNotFound),
		errors.Is(err, engine.ErrParticipantNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrValidation):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrEventNotJoinable),
		errors.Is(err, engine.ErrEventNotVotable),
		errors.Is(err, engine.ErrVoteLimitReached),
		errors.Is(err, engine.ErrDuplicateVote),
		errors.Is(err, engine.ErrOptionInactive),
		errors.Is(err, engine.ErrInvalidTransition):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrConcurrencyConflict):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Conflicting concurrent update, please retry")
	default:
		slog.Error("request failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}
