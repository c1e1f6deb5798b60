// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/encore-vote/db"
	"github.com/danielhkuo/encore-vote/models"
)

// Engine owns every access to the vote ledger and its counters. Handlers go
// through it so that admission and eligibility are function calls rather
// than storage-layer policy.
type Engine struct {
	db      *sql.DB
	dialect db.Dialect

	// Notify, when set, is called after a vote transaction commits.
	// It is never called for replayed requests or rolled-back transactions.
	Notify func(kind string, vote models.Vote)
}

func New(conn *sql.DB, dialect db.Dialect) *Engine {
	return &Engine{db: conn, dialect: dialect}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scannable interface {
	Scan(dest ...any) error
}

const eventColumns = `id, title, host_name, state, join_code, voting_starts_at, voting_ends_at,
	max_votes_per_participant, allow_multiple_per_option, tiebreaker, reveal_policy, config_version,
	total_votes, total_participants, total_options,
	created_at, published_at, closed_at, revealed_at, cancelled_at`

func scanEvent(row scannable) (models.Event, error) {
	var ev models.Event
	var joinCode sql.NullString
	var startsAt, endsAt, publishedAt, closedAt, revealedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&ev.ID, &ev.Title, &ev.HostName, &ev.State, &joinCode, &startsAt, &endsAt,
		&ev.Config.MaxVotesPerParticipant, &ev.Config.AllowMultiplePerOption,
		&ev.Config.Tiebreaker, &ev.Config.RevealPolicy, &ev.Config.Version,
		&ev.Totals.TotalVotes, &ev.Totals.TotalParticipants, &ev.Totals.TotalOptions,
		&ev.CreatedAt, &publishedAt, &closedAt, &revealedAt, &cancelledAt,
	)
	if err != nil {
		return models.Event{}, err
	}

	if joinCode.Valid {
		ev.JoinCode = &joinCode.String
	}
	ev.VotingStartsAt = nullTimePtr(startsAt)
	ev.VotingEndsAt = nullTimePtr(endsAt)
	ev.PublishedAt = nullTimePtr(publishedAt)
	ev.ClosedAt = nullTimePtr(closedAt)
	ev.RevealedAt = nullTimePtr(revealedAt)
	ev.CancelledAt = nullTimePtr(cancelledAt)
	return ev, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (e *Engine) eventBy(ctx context.Context, q querier, where string, arg any, lock bool) (models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM event WHERE ` + where + ` = $1`
	if lock {
		query += e.dialect.LockSuffix()
	}
	ev, err := scanEvent(q.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return models.Event{}, ErrEventNotFound
	}
	return ev, err
}

// EventByID loads an event by its private identifier.
func (e *Engine) EventByID(ctx context.Context, id string) (models.Event, error) {
	return e.eventBy(ctx, e.db, "id", id, false)
}

// EventByJoinCode loads an event by its public join code.
func (e *Engine) EventByJoinCode(ctx context.Context, code string) (models.Event, error) {
	return e.eventBy(ctx, e.db, "join_code", code, false)
}

const participantColumns = `id, event_id, identity_kind, identity_key, registration_method,
	votes_used, max_votes, last_vote_at, joined_at`

func scanParticipant(row scannable) (models.Participant, error) {
	var p models.Participant
	var lastVoteAt sql.NullTime
	err := row.Scan(&p.ID, &p.EventID, &p.IdentityKind, &p.IdentityKey, &p.RegistrationMethod,
		&p.VotesUsed, &p.MaxVotes, &lastVoteAt, &p.JoinedAt)
	if err != nil {
		return models.Participant{}, err
	}
	p.LastVoteAt = nullTimePtr(lastVoteAt)
	return p, nil
}

// ParticipantByID loads a participant row without locking it.
func (e *Engine) ParticipantByID(ctx context.Context, id string) (models.Participant, error) {
	p, err := scanParticipant(e.db.QueryRowContext(ctx,
		`SELECT `+participantColumns+` FROM participant WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

const optionColumns = `id, event_id, title, active, display_order, vote_count, voter_count, created_at`

func scanOption(row scannable) (models.Option, error) {
	var o models.Option
	err := row.Scan(&o.ID, &o.EventID, &o.Title, &o.Active, &o.DisplayOrder,
		&o.VoteCount, &o.VoterCount, &o.CreatedAt)
	return o, err
}

// Options lists an event's options in display order.
func (e *Engine) Options(ctx context.Context, eventID string) ([]models.Option, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT `+optionColumns+` FROM option
		WHERE event_id = $1
		ORDER BY display_order, created_at, id
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		options = append(options, o)
	}
	return options, rows.Err()
}

// VotesByParticipant returns a participant's votes in cast order.
func (e *Engine) VotesByParticipant(ctx context.Context, participantID string) ([]models.VoteSummary, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT id, option_id, seq, cast_at FROM vote
		WHERE participant_id = $1
		ORDER BY seq
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.VoteSummary{}
	for rows.Next() {
		var v models.VoteSummary
		if err := rows.Scan(&v.VoteID, &v.OptionID, &v.Seq, &v.CastAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
