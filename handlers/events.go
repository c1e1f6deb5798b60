// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/encore-vote/auth"
	"github.com/danielhkuo/encore-vote/cliparse"
	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/middleware"
	"github.com/danielhkuo/encore-vote/models"
)

// EventHandler serves the host-facing lifecycle operations. All of them
// except CreateEvent require the X-Host-Key header.
type EventHandler struct {
	db  *sql.DB
	cfg cliparse.Config
	eng *engine.Engine
}

func NewEventHandler(db *sql.DB, cfg cliparse.Config, eng *engine.Engine) *EventHandler {
	return &EventHandler{db: db, cfg: cfg, eng: eng}
}

// loadHostEvent authenticates the host key and loads the event. On failure
// it writes the response and returns ok=false.
func (h *EventHandler) loadHostEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	eventID := r.PathValue("id")
	if eventID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "event id is required")
		return models.Event{}, false
	}

	hostKey := r.Header.Get("X-Host-Key")
	if err := auth.ValidateHostKey(eventID, hostKey, h.cfg.HostKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid host key")
		return models.Event{}, false
	}

	ev, err := h.eng.EventByID(r.Context(), eventID)
	if err != nil {
		writeEngineError(w, err)
		return models.Event{}, false
	}
	return ev, true
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.HostName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "host_name is required")
		return
	}

	eventID := uuid.NewString()
	hostKey := auth.GenerateHostKey(eventID, h.cfg.HostKeySalt)
	cfg := models.DefaultConfig()

	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO event (id, title, host_name, state,
			max_votes_per_participant, allow_multiple_per_option, tiebreaker, reveal_policy, config_version,
			created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, eventID, req.Title, req.HostName, models.StateDraft,
		cfg.MaxVotesPerParticipant, cfg.AllowMultiplePerOption, cfg.Tiebreaker, cfg.RevealPolicy, cfg.Version,
		time.Now())
	if err != nil {
		slog.Error("failed to insert event", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	slog.Info("event created", "event_id", eventID, "host", req.HostName)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateEventResponse{
		EventID: eventID,
		HostKey: hostKey,
	})
}

// GetEventAdmin handles GET /events/{id}/admin
func (h *EventHandler) GetEventAdmin(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	options, err := h.eng.Options(r.Context(), ev.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if options == nil {
		options = []models.Option{}
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"event":   ev,
		"options": options,
	})
}

// UpdateEvent handles PATCH /events/{id} - wizard-style draft edits.
// Config changes bump config_version; they never affect participants who
// already joined, whose allowance was copied at join time.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if ev.State != models.StateDraft {
		middleware.ErrorResponse(w, http.StatusConflict, "Only draft events can be edited")
		return
	}

	var req models.UpdateEventRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	title := ev.Title
	if req.Title != nil {
		if *req.Title == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		title = *req.Title
	}

	cfg := ev.Config
	configChanged := false
	if req.MaxVotesPerParticipant != nil {
		if *req.MaxVotesPerParticipant < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "max_votes_per_participant must be at least 1")
			return
		}
		cfg.MaxVotesPerParticipant = *req.MaxVotesPerParticipant
		configChanged = true
	}
	if req.AllowMultiplePerOption != nil {
		cfg.AllowMultiplePerOption = *req.AllowMultiplePerOption
		configChanged = true
	}
	if req.Tiebreaker != nil {
		if *req.Tiebreaker != models.TiebreakEarliestOption && *req.Tiebreaker != models.TiebreakDisplayOrder {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown tiebreaker")
			return
		}
		cfg.Tiebreaker = *req.Tiebreaker
		configChanged = true
	}
	if req.RevealPolicy != nil {
		if *req.RevealPolicy != models.RevealAfterClose && *req.RevealPolicy != models.RevealLive {
			middleware.ErrorResponse(w, http.StatusBadRequest, "unknown reveal policy")
			return
		}
		cfg.RevealPolicy = *req.RevealPolicy
		configChanged = true
	}
	if configChanged {
		cfg.Version++
	}

	startsAt := ev.VotingStartsAt
	if req.VotingStartsAt != nil {
		startsAt = req.VotingStartsAt
	}
	endsAt := ev.VotingEndsAt
	if req.VotingEndsAt != nil {
		endsAt = req.VotingEndsAt
	}
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_ends_at must be after voting_starts_at")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event
		SET title = $1, max_votes_per_participant = $2, allow_multiple_per_option = $3,
			tiebreaker = $4, reveal_policy = $5, config_version = $6,
			voting_starts_at = $7, voting_ends_at = $8
		WHERE id = $9
	`, title, cfg.MaxVotesPerParticipant, cfg.AllowMultiplePerOption,
		cfg.Tiebreaker, cfg.RevealPolicy, cfg.Version, startsAt, endsAt, ev.ID)
	if err != nil {
		slog.Error("failed to update event", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update event")
		return
	}

	updated, err := h.eng.EventByID(r.Context(), ev.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// AddOption handles POST /events/{id}/options
func (h *EventHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanEditOptions(ev.State) {
		middleware.ErrorResponse(w, http.StatusConflict, "Options can only be edited before voting opens")
		return
	}

	var req models.AddOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	displayOrder := ev.Totals.TotalOptions
	if req.DisplayOrder != nil {
		displayOrder = *req.DisplayOrder
	}

	optionID := uuid.NewString()
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.Context(), `
		INSERT INTO option (id, event_id, title, active, display_order, created_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
	`, optionID, ev.ID, req.Title, displayOrder, time.Now())
	if err != nil {
		slog.Error("failed to insert option", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		UPDATE event SET total_options = total_options + 1 WHERE id = $1
	`, ev.ID)
	if err != nil {
		slog.Error("failed to update option total", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	slog.Info("option added", "event_id", ev.ID, "option_id", optionID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{
		OptionID: optionID,
	})
}

// RemoveOption handles DELETE /events/{id}/options/{optionID}.
// Only reachable before voting opens, so no votes can reference the option.
func (h *EventHandler) RemoveOption(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanEditOptions(ev.State) {
		middleware.ErrorResponse(w, http.StatusConflict, "Options can only be edited before voting opens")
		return
	}

	optionID := r.PathValue("optionID")
	tx, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(r.Context(), `
		DELETE FROM option WHERE id = $1 AND event_id = $2
	`, optionID, ev.ID)
	if err != nil {
		slog.Error("failed to delete option", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove option")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Option not found")
		return
	}

	_, err = tx.ExecContext(r.Context(), `
		UPDATE event SET total_options = total_options - 1 WHERE id = $1
	`, ev.ID)
	if err != nil {
		slog.Error("failed to update option total", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove option")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to remove option")
		return
	}

	slog.Info("option removed", "event_id", ev.ID, "option_id", optionID)
	w.WriteHeader(http.StatusNoContent)
}

// DeactivateOption handles POST /events/{id}/options/{optionID}/deactivate.
// Unlike removal this is allowed while the event is live; existing votes for
// the option stay in the ledger, new ones fail with OptionInactive.
func (h *EventHandler) DeactivateOption(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if ev.State == models.StateVotingClosed || ev.State == models.StateResultsPublished ||
		ev.State == models.StateCancelled || ev.State == models.StateArchived {
		middleware.ErrorResponse(w, http.StatusConflict, "Event voting has ended")
		return
	}

	optionID := r.PathValue("optionID")
	res, err := h.db.ExecContext(r.Context(), `
		UPDATE option SET active = FALSE WHERE id = $1 AND event_id = $2
	`, optionID, ev.ID)
	if err != nil {
		slog.Error("failed to deactivate option", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deactivate option")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Option not found")
		return
	}

	slog.Info("option deactivated", "event_id", ev.ID, "option_id", optionID)
	w.WriteHeader(http.StatusNoContent)
}

// PublishEvent handles POST /events/{id}/publish
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StatePublished) {
		middleware.ErrorResponse(w, http.StatusConflict, "Event is not in draft state")
		return
	}

	var activeOptions int
	err := h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM option WHERE event_id = $1 AND active = TRUE
	`, ev.ID).Scan(&activeOptions)
	if err != nil {
		slog.Error("failed to count options", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if activeOptions < 2 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Event must have at least 2 active options")
		return
	}

	joinCode := auth.GenerateJoinCode(ev.ID, h.cfg.JoinCodeSalt)

	_, err = h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1, join_code = $2, published_at = $3 WHERE id = $4 AND state = $5
	`, models.StatePublished, joinCode, time.Now(), ev.ID, models.StateDraft)
	if err != nil {
		slog.Error("failed to publish event", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish event")
		return
	}

	slog.Info("event published", "event_id", ev.ID, "join_code", joinCode)

	middleware.JSONResponse(w, http.StatusOK, models.PublishEventResponse{
		JoinCode: joinCode,
		JoinURL:  fmt.Sprintf("%s/join/%s", h.cfg.BaseURL, joinCode),
	})
}

// OpenVoting handles POST /events/{id}/open
func (h *EventHandler) OpenVoting(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StateLive) {
		middleware.ErrorResponse(w, http.StatusConflict, "Event must be published before voting opens")
		return
	}

	var req models.OpenVotingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	now := time.Now()
	startsAt := now
	if req.VotingStartsAt != nil {
		startsAt = *req.VotingStartsAt
	}
	if req.VotingEndsAt == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_ends_at is required")
		return
	}
	endsAt := *req.VotingEndsAt
	if !endsAt.After(startsAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voting_ends_at must be after voting_starts_at")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1, voting_starts_at = $2, voting_ends_at = $3
		WHERE id = $4 AND state = $5
	`, models.StateLive, startsAt, endsAt, ev.ID, models.StatePublished)
	if err != nil {
		slog.Error("failed to open voting", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to open voting")
		return
	}

	slog.Info("voting opened", "event_id", ev.ID, "ends_at", endsAt)
	w.WriteHeader(http.StatusNoContent)
}

// CloseVoting handles POST /events/{id}/close
func (h *EventHandler) CloseVoting(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StateVotingClosed) {
		middleware.ErrorResponse(w, http.StatusConflict, "Event is not live")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1, closed_at = $2 WHERE id = $3 AND state = $4
	`, models.StateVotingClosed, time.Now(), ev.ID, models.StateLive)
	if err != nil {
		slog.Error("failed to close voting", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close voting")
		return
	}

	slog.Info("voting closed", "event_id", ev.ID)
	w.WriteHeader(http.StatusNoContent)
}

// RevealResults handles POST /events/{id}/reveal - the irreversible
// exposure of real counts.
func (h *EventHandler) RevealResults(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StateResultsPublished) {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting must be closed before results are published")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1, revealed_at = $2 WHERE id = $3 AND state = $4
	`, models.StateResultsPublished, time.Now(), ev.ID, models.StateVotingClosed)
	if err != nil {
		slog.Error("failed to reveal results", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reveal results")
		return
	}

	slog.Info("results published", "event_id", ev.ID)

	updated, err := h.eng.EventByID(r.Context(), ev.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	board, err := h.eng.Leaderboard(r.Context(), updated)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, board)
}

// CancelEvent handles POST /events/{id}/cancel. Votes already cast remain
// in the ledger for audit; the leaderboard never reveals them.
func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StateCancelled) {
		middleware.ErrorResponse(w, http.StatusConflict, "Event can no longer be cancelled")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1, cancelled_at = $2 WHERE id = $3 AND state = $4
	`, models.StateCancelled, time.Now(), ev.ID, ev.State)
	if err != nil {
		slog.Error("failed to cancel event", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cancel event")
		return
	}

	slog.Info("event cancelled", "event_id", ev.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ArchiveEvent handles POST /events/{id}/archive
func (h *EventHandler) ArchiveEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	if !engine.CanTransition(ev.State, models.StateArchived) {
		middleware.ErrorResponse(w, http.StatusConflict, "Only published results can be archived")
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		UPDATE event SET state = $1 WHERE id = $2 AND state = $3
	`, models.StateArchived, ev.ID, models.StateResultsPublished)
	if err != nil {
		slog.Error("failed to archive event", "error", err, "event_id", ev.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to archive event")
		return
	}

	slog.Info("event archived", "event_id", ev.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ReconcileEvent handles GET /events/{id}/reconcile - the offline
// consistency check between the vote ledger and the denormalized counters.
func (h *EventHandler) ReconcileEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadHostEvent(w, r)
	if !ok {
		return
	}

	drift, err := h.eng.Reconcile(r.Context(), ev.ID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]interface{}{
		"consistent": len(drift) == 0,
		"drift":      drift,
	})
}
