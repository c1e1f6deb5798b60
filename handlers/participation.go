// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/encore-vote/auth"
	"github.com/danielhkuo/encore-vote/cliparse"
	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/middleware"
	"github.com/danielhkuo/encore-vote/models"
)

// ParticipationHandler serves the public join and status operations,
// addressed by join code.
type ParticipationHandler struct {
	cfg cliparse.Config
	eng *engine.Engine
}

func NewParticipationHandler(cfg cliparse.Config, eng *engine.Engine) *ParticipationHandler {
	return &ParticipationHandler{cfg: cfg, eng: eng}
}

// loadPublicEvent resolves the join code and applies the lazy window check.
func (h *ParticipationHandler) loadPublicEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	code := r.PathValue("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "join code is required")
		return models.Event{}, false
	}

	ev, err := h.eng.EventByJoinCode(r.Context(), code)
	if err != nil {
		writeEngineError(w, err)
		return models.Event{}, false
	}

	ev, err = h.eng.MaybeAutoClose(r.Context(), ev, time.Now())
	if err != nil {
		writeEngineError(w, err)
		return models.Event{}, false
	}
	return ev, true
}

// Join handles POST /join/{code}. Joining is idempotent per identity key:
// repeating the call returns the existing participant.
func (h *ParticipationHandler) Join(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadPublicEvent(w, r)
	if !ok {
		return
	}

	var req models.JoinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	generatedKey := ""
	if req.IdentityKind == "" {
		req.IdentityKind = models.IdentityAnonymous
	}
	if req.IdentityKind == models.IdentityAnonymous && req.IdentityKey == "" {
		key, err := auth.GenerateAnonymousKey()
		if err != nil {
			slog.Error("failed to generate anonymous key", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join event")
			return
		}
		req.IdentityKey = key
		generatedKey = key
	}

	participant, created, err := h.eng.Join(r.Context(), ev, req.IdentityKind, req.IdentityKey, req.RegistrationMethod)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	middleware.JSONResponse(w, status, models.JoinResponse{
		ParticipantID:  participant.ID,
		IdentityKind:   participant.IdentityKind,
		IdentityKey:    generatedKey, // only echoed when server-generated
		RemainingVotes: participant.MaxVotes - participant.VotesUsed,
		AlreadyJoined:  !created,
	})
}

// GetEvent handles GET /join/{code} - the public event view. Counts stay on
// the leaderboard endpoint; this returns state, window, and options.
func (h *ParticipationHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadPublicEvent(w, r)
	if !ok {
		return
	}

	options, err := h.eng.Options(r.Context(), ev.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	resp := models.EventPublicResponse{
		Title:          ev.Title,
		State:          ev.State,
		VotingStartsAt: ev.VotingStartsAt,
		VotingEndsAt:   ev.VotingEndsAt,
		EventTotals:    ev.Totals,
		Options:        make([]models.OptionInfo, 0, len(options)),
	}
	if ev.State == models.StateLive && ev.VotingEndsAt != nil {
		resp.ClosesIn = humanize.Time(*ev.VotingEndsAt)
	}
	for _, opt := range options {
		resp.Options = append(resp.Options, models.OptionInfo{
			OptionID: opt.ID,
			Title:    opt.Title,
			Active:   opt.Active,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetParticipant handles GET /join/{code}/participants/{participantID} -
// the eligibility preview: remaining allowance and the votes cast so far.
func (h *ParticipationHandler) GetParticipant(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadPublicEvent(w, r)
	if !ok {
		return
	}

	participantID := r.PathValue("participantID")
	participant, err := h.eng.ParticipantByID(r.Context(), participantID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if participant.EventID != ev.ID {
		middleware.ErrorResponse(w, http.StatusNotFound, "participant not found")
		return
	}

	votes, err := h.eng.VotesByParticipant(r.Context(), participant.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ParticipantStatusResponse{
		ParticipantID:  participant.ID,
		VotesUsed:      participant.VotesUsed,
		MaxVotes:       participant.MaxVotes,
		RemainingVotes: participant.MaxVotes - participant.VotesUsed,
		Votes:          votes,
	})
}
