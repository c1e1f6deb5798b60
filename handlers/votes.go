// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/encore-vote/auth"
	"github.com/danielhkuo/encore-vote/cliparse"
	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/middleware"
	"github.com/danielhkuo/encore-vote/models"
)

// VoteHandler serves vote casting, the concurrency-critical path.
type VoteHandler struct {
	cfg cliparse.Config
	eng *engine.Engine
}

func NewVoteHandler(cfg cliparse.Config, eng *engine.Engine) *VoteHandler {
	return &VoteHandler{cfg: cfg, eng: eng}
}

// CastVote handles POST /join/{code}/votes. The engine owns the
// transaction; this layer only resolves the event, collects audit metadata,
// and maps errors to statuses. A replayed client_request_token returns 200
// with the original result instead of 201.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
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

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	clientIP := middleware.GetClientIP(r)
	audit := models.VoteAudit{
		Origin:    "api",
		IPHash:    auth.HashIP(clientIP, h.cfg.HostKeySalt), // Reuse host salt for IP hashing
		UserAgent: r.UserAgent(),
	}

	result, err := h.eng.CastVote(r.Context(), ev.ID, req, audit)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	middleware.JSONResponse(w, status, models.CastVoteResponse{
		VoteID:         result.Vote.ID,
		RemainingVotes: result.RemainingVotes,
		EventTotals:    result.Totals,
	})
}
