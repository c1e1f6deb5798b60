// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/encore-vote/models"
)

// idempotencyWindow bounds how long a client_request_token keeps returning
// the original vote instead of casting a new one.
const idempotencyWindow = 24 * time.Hour

// CastResult is the outcome of a committed (or replayed) vote.
type CastResult struct {
	Vote           models.Vote
	RemainingVotes int
	Totals         models.EventTotals
	Replayed       bool
}

// CastVote records one vote. Everything happens in a single transaction:
// the eligibility re-check, the ledger insert, and all counter updates, so
// either all of it commits or none of it is visible. Row locks are taken on
// the participant first and the option second; every caller uses that order,
// which is what prevents deadlock between two votes touching the same pair.
// The event row itself is locked last, implicitly, by its counter update.
//
// A repeated client_request_token within the idempotency window returns the
// original result without touching any counter. Lock contention is retried
// by runTx; all other failures surface as taxonomy errors.
func (e *Engine) CastVote(ctx context.Context, eventID string, req models.CastVoteRequest, audit models.VoteAudit) (CastResult, error) {
	if req.ParticipantID == "" {
		return CastResult{}, fmt.Errorf("%w: participant_id is required", ErrValidation)
	}
	if req.OptionID == "" {
		return CastResult{}, fmt.Errorf("%w: option_id is required", ErrValidation)
	}

	var result CastResult
	var elapsed *models.Event

	err := e.runTx(ctx, func(tx querier) error {
		result = CastResult{}
		now := time.Now()

		ev, err := e.eventBy(ctx, tx, "id", eventID, false)
		if err != nil {
			return err
		}

		// Replay check comes first so a retried request never depends on
		// current eligibility: the original answer stands.
		if req.ClientRequestToken != "" {
			replayed, res, err := e.lookupReplay(ctx, tx, ev, req, now)
			if err != nil {
				return err
			}
			if replayed {
				result = res
				return nil
			}
		}

		// Lazy close: a vote arriving after the window elapsed closes the
		// event rather than implicitly holding it open. The close itself is
		// deferred until after this transaction rolls back; writing it here
		// would be undone with the rest of the rollback.
		if ev.State == models.StateLive && ev.VotingEndsAt != nil && !now.Before(*ev.VotingEndsAt) {
			evCopy := ev
			elapsed = &evCopy
			return fmt.Errorf("%w: outside the voting window", ErrEventNotVotable)
		}

		// Participant lock before option lock.
		p, err := scanParticipant(tx.QueryRowContext(ctx,
			`SELECT `+participantColumns+` FROM participant WHERE id = $1`+e.dialect.LockSuffix(),
			req.ParticipantID))
		if err == sql.ErrNoRows {
			return ErrParticipantNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock participant: %w", err)
		}

		opt, err := scanOption(tx.QueryRowContext(ctx,
			`SELECT `+optionColumns+` FROM option WHERE id = $1`+e.dialect.LockSuffix(),
			req.OptionID))
		if err == sql.ErrNoRows {
			return ErrOptionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock option: %w", err)
		}

		var votedForOption bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM vote WHERE participant_id = $1 AND option_id = $2)
		`, p.ID, opt.ID).Scan(&votedForOption)
		if err != nil {
			return fmt.Errorf("failed to check prior votes: %w", err)
		}

		elig := CheckEligibility(ev, p, opt, votedForOption, now)
		if !elig.Eligible {
			return fmt.Errorf("%w (%s)", elig.Err, elig.Reason)
		}

		seq := p.VotesUsed + 1
		vote := models.Vote{
			ID:            uuid.NewString(),
			EventID:       ev.ID,
			ParticipantID: p.ID,
			OptionID:      opt.ID,
			Seq:           seq,
			CastAt:        now,
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (id, event_id, participant_id, option_id, seq, cast_at, origin, ip_hash, user_agent)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, vote.ID, vote.EventID, vote.ParticipantID, vote.OptionID, vote.Seq, vote.CastAt,
			nullable(audit.Origin), nullable(audit.IPHash), nullable(audit.UserAgent))
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		// Constraint backstop for the single-vote-per-option policy. The
		// eligibility check above already caught the normal case; this
		// catches anything it could not see.
		if !ev.Config.AllowMultiplePerOption {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO vote_claim (participant_id, option_id) VALUES ($1, $2)
			`, p.ID, opt.ID)
			if isUniqueViolation(err) {
				return fmt.Errorf("%w (option %s)", ErrDuplicateVote, opt.ID)
			}
			if err != nil {
				return fmt.Errorf("failed to insert vote claim: %w", err)
			}
		}

		if req.ClientRequestToken != "" {
			_, err = tx.ExecContext(ctx, `
				DELETE FROM idempotency_key WHERE event_id = $1 AND created_at < $2
			`, ev.ID, now.Add(-idempotencyWindow))
			if err != nil {
				return fmt.Errorf("failed to purge idempotency keys: %w", err)
			}

			_, err = tx.ExecContext(ctx, `
				INSERT INTO idempotency_key (event_id, token, vote_id, participant_id, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, ev.ID, req.ClientRequestToken, vote.ID, p.ID, now)
			if isUniqueViolation(err) {
				// Lost a race against the same token; retry replays it.
				return fmt.Errorf("%w: duplicate request token", ErrConcurrencyConflict)
			}
			if err != nil {
				return fmt.Errorf("failed to insert idempotency key: %w", err)
			}
		}

		voterInc := 0
		if !votedForOption {
			voterInc = 1
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE option SET vote_count = vote_count + 1, voter_count = voter_count + $1 WHERE id = $2
		`, voterInc, opt.ID)
		if err != nil {
			return fmt.Errorf("failed to update option counters: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE participant SET votes_used = votes_used + 1, last_vote_at = $1 WHERE id = $2
		`, now, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update participant allowance: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE event SET total_votes = total_votes + 1 WHERE id = $1
		`, ev.ID)
		if err != nil {
			return fmt.Errorf("failed to update event totals: %w", err)
		}

		totals := ev.Totals
		totals.TotalVotes++

		result = CastResult{
			Vote:           vote,
			RemainingVotes: p.MaxVotes - seq,
			Totals:         totals,
		}
		return nil
	})
	if elapsed != nil {
		if _, closeErr := e.MaybeAutoClose(ctx, *elapsed, time.Now()); closeErr != nil {
			slog.Warn("failed to close elapsed event", "event_id", elapsed.ID, "error", closeErr)
		}
	}
	if err != nil {
		return CastResult{}, err
	}

	if !result.Replayed {
		slog.Info("vote cast",
			"event_id", result.Vote.EventID,
			"participant_id", result.Vote.ParticipantID,
			"option_id", result.Vote.OptionID,
			"seq", result.Vote.Seq,
		)
		// Outbound notifications fire only after the transaction commits.
		if e.Notify != nil {
			e.Notify("vote.created", result.Vote)
		}
	}
	return result, nil
}

// lookupReplay returns the recorded result for a previously used request
// token. Expired rows are dropped so the token becomes usable again.
func (e *Engine) lookupReplay(ctx context.Context, tx querier, ev models.Event, req models.CastVoteRequest, now time.Time) (bool, CastResult, error) {
	var voteID, participantID string
	var createdAt time.Time
	err := tx.QueryRowContext(ctx, `
		SELECT vote_id, participant_id, created_at FROM idempotency_key
		WHERE event_id = $1 AND token = $2
	`, ev.ID, req.ClientRequestToken).Scan(&voteID, &participantID, &createdAt)
	if err == sql.ErrNoRows {
		return false, CastResult{}, nil
	}
	if err != nil {
		return false, CastResult{}, fmt.Errorf("failed to look up request token: %w", err)
	}

	if now.Sub(createdAt) > idempotencyWindow {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM idempotency_key WHERE event_id = $1 AND token = $2
		`, ev.ID, req.ClientRequestToken)
		return false, CastResult{}, err
	}

	if participantID != req.ParticipantID {
		return false, CastResult{}, fmt.Errorf("%w: client_request_token was used by another participant", ErrValidation)
	}

	vote, err := scanVote(tx.QueryRowContext(ctx,
		`SELECT `+voteColumns+` FROM vote WHERE id = $1`, voteID))
	if err != nil {
		return false, CastResult{}, fmt.Errorf("failed to load recorded vote: %w", err)
	}

	p, err := scanParticipant(tx.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participant WHERE id = $1`, participantID))
	if err != nil {
		return false, CastResult{}, fmt.Errorf("failed to load participant: %w", err)
	}

	return true, CastResult{
		Vote:           vote,
		RemainingVotes: p.MaxVotes - p.VotesUsed,
		Totals:         ev.Totals,
		Replayed:       true,
	}, nil
}

const voteColumns = `id, event_id, participant_id, option_id, seq, cast_at, origin, ip_hash, user_agent`

func scanVote(row scannable) (models.Vote, error) {
	var v models.Vote
	var origin, ipHash, userAgent sql.NullString
	err := row.Scan(&v.ID, &v.EventID, &v.ParticipantID, &v.OptionID, &v.Seq, &v.CastAt,
		&origin, &ipHash, &userAgent)
	if err != nil {
		return models.Vote{}, err
	}
	if origin.Valid {
		v.Origin = &origin.String
	}
	if ipHash.Valid {
		v.IPHash = &ipHash.String
	}
	if userAgent.Valid {
		v.UserAgent = &userAgent.String
	}
	return v, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
