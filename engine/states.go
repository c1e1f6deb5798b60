// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/encore-vote/models"
)

// transitions is the full lifecycle graph. cancelled and archived are
// terminal; everything before results_published can be cancelled.
var transitions = map[string][]string{
	models.StateDraft:            {models.StatePublished, models.StateCancelled},
	models.StatePublished:        {models.StateLive, models.StateCancelled},
	models.StateLive:             {models.StateVotingClosed, models.StateCancelled},
	models.StateVotingClosed:     {models.StateResultsPublished, models.StateCancelled},
	models.StateResultsPublished: {models.StateArchived},
}

// CanTransition reports whether the lifecycle permits moving from one state
// to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanJoin reports whether new participants may be admitted in this state.
func CanJoin(state string) bool {
	return state == models.StatePublished || state == models.StateLive
}

// CanEditOptions reports whether options may be added or removed.
func CanEditOptions(state string) bool {
	return state == models.StateDraft || state == models.StatePublished
}

// withinWindow reports whether now falls inside the event's voting window.
// A nil start means the window opened immediately; a nil end never elapses.
func withinWindow(ev models.Event, now time.Time) bool {
	if ev.VotingStartsAt != nil && now.Before(*ev.VotingStartsAt) {
		return false
	}
	if ev.VotingEndsAt != nil && !now.Before(*ev.VotingEndsAt) {
		return false
	}
	return true
}

// MaybeAutoClose moves a live event whose window end has elapsed to
// voting_closed. It runs lazily on vote and read paths; there is no
// background clock, and nothing here can re-open a closed window. The
// returned event reflects the new state.
func (e *Engine) MaybeAutoClose(ctx context.Context, ev models.Event, now time.Time) (models.Event, error) {
	if ev.State != models.StateLive || ev.VotingEndsAt == nil || now.Before(*ev.VotingEndsAt) {
		return ev, nil
	}

	// Guarded by state so a concurrent host action wins cleanly.
	res, err := e.db.ExecContext(ctx, `
		UPDATE event SET state = $1, closed_at = $2
		WHERE id = $3 AND state = $4
	`, models.StateVotingClosed, now, ev.ID, models.StateLive)
	if err != nil {
		return ev, err
	}

	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("voting window elapsed, event closed", "event_id", ev.ID)
	}

	ev.State = models.StateVotingClosed
	ev.ClosedAt = &now
	return ev, nil
}
