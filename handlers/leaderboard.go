// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/encore-vote/cliparse"
	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/middleware"
)

// LeaderboardHandler serves the external aggregate read path.
type LeaderboardHandler struct {
	cfg cliparse.Config
	eng *engine.Engine
}

func NewLeaderboardHandler(cfg cliparse.Config, eng *engine.Engine) *LeaderboardHandler {
	return &LeaderboardHandler{cfg: cfg, eng: eng}
}

// GetLeaderboard handles GET /join/{code}/leaderboard.
// Before results are published (and always for cancelled events) counts are
// masked and options arrive in display order; afterwards they are sorted by
// vote count with the event's tiebreaker. The reveal decision is entirely
// the engine's.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "join code is required")
		return
	}

	ev, err := h.eng.EventByJoinCode(r.Context(), code)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	board, err := h.eng.Leaderboard(r.Context(), ev)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, board)
}
