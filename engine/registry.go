// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/encore-vote/models"
)

// Join admits a voter into an event. It is idempotent: joining twice with
// the same identity key returns the existing participant. The uniqueness
// constraint on (event_id, identity_key) does the enforcement, not a prior
// read, so concurrent joins for the same identity still produce one row.
// max_votes is copied from the event config at join time; later config edits
// never change an admitted participant's allowance.
func (e *Engine) Join(ctx context.Context, ev models.Event, identityKind, identityKey, method string) (models.Participant, bool, error) {
	if !CanJoin(ev.State) {
		return models.Participant{}, false, fmt.Errorf("%w: event is %s", ErrEventNotJoinable, ev.State)
	}

	switch identityKind {
	case models.IdentityAccount, models.IdentityPhone, models.IdentityAnonymous:
	default:
		return models.Participant{}, false, fmt.Errorf("%w: unknown identity kind %q", ErrValidation, identityKind)
	}
	if identityKey == "" {
		return models.Participant{}, false, fmt.Errorf("%w: identity key is required", ErrValidation)
	}
	if method == "" {
		method = "web"
	}

	var created bool
	var participant models.Participant

	err := e.runTx(ctx, func(tx querier) error {
		created = false

		res, err := tx.ExecContext(ctx, `
			INSERT INTO participant (id, event_id, identity_kind, identity_key, registration_method,
				votes_used, max_votes, joined_at)
			VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
			ON CONFLICT (event_id, identity_key) DO NOTHING
		`, uuid.NewString(), ev.ID, identityKind, identityKey, method,
			ev.Config.MaxVotesPerParticipant, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}

		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n > 0 {
			created = true
			_, err = tx.ExecContext(ctx, `
				UPDATE event SET total_participants = total_participants + 1 WHERE id = $1
			`, ev.ID)
			if err != nil {
				return fmt.Errorf("failed to update participant total: %w", err)
			}
		}

		participant, err = scanParticipant(tx.QueryRowContext(ctx, `
			SELECT `+participantColumns+` FROM participant
			WHERE event_id = $1 AND identity_key = $2
		`, ev.ID, identityKey))
		if err != nil {
			return fmt.Errorf("failed to load participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Participant{}, false, err
	}

	if created {
		slog.Info("participant joined", "event_id", ev.ID, "participant_id", participant.ID, "method", method)
	}
	return participant, created, nil
}
