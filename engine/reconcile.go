// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"fmt"
)

// CounterDrift describes one denormalized counter that disagrees with the
// vote ledger.
type CounterDrift struct {
	Scope   string `json:"scope"` // "event", "option", "participant"
	ID      string `json:"id"`
	Counter string `json:"counter"`
	Stored  int    `json:"stored"`
	Derived int    `json:"derived"`
}

// Reconcile recomputes every counter for an event from the vote table and
// reports any disagreement with the stored values. The hot path maintains
// counters incrementally; this is the independent check that keeps that
// honest. An empty result means the ledger and the counters agree.
func (e *Engine) Reconcile(ctx context.Context, eventID string) ([]CounterDrift, error) {
	ev, err := e.EventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	drift := []CounterDrift{}
	check := func(scope, id, counter string, stored, derived int) {
		if stored != derived {
			drift = append(drift, CounterDrift{
				Scope: scope, ID: id, Counter: counter,
				Stored: stored, Derived: derived,
			})
		}
	}

	var totalVotes, totalParticipants, totalOptions int
	err = e.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM vote WHERE event_id = $1),
			(SELECT COUNT(*) FROM participant WHERE event_id = $1),
			(SELECT COUNT(*) FROM option WHERE event_id = $1)
	`, eventID).Scan(&totalVotes, &totalParticipants, &totalOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to derive event totals: %w", err)
	}
	check("event", ev.ID, "total_votes", ev.Totals.TotalVotes, totalVotes)
	check("event", ev.ID, "total_participants", ev.Totals.TotalParticipants, totalParticipants)
	check("event", ev.ID, "total_options", ev.Totals.TotalOptions, totalOptions)

	rows, err := e.db.QueryContext(ctx, `
		SELECT o.id, o.vote_count, o.voter_count,
			(SELECT COUNT(*) FROM vote v WHERE v.option_id = o.id),
			(SELECT COUNT(DISTINCT v.participant_id) FROM vote v WHERE v.option_id = o.id)
		FROM option o WHERE o.event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive option counts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var storedVotes, storedVoters, derivedVotes, derivedVoters int
		if err := rows.Scan(&id, &storedVotes, &storedVoters, &derivedVotes, &derivedVoters); err != nil {
			return nil, err
		}
		check("option", id, "vote_count", storedVotes, derivedVotes)
		check("option", id, "voter_count", storedVoters, derivedVoters)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := e.db.QueryContext(ctx, `
		SELECT p.id, p.votes_used,
			(SELECT COUNT(*) FROM vote v WHERE v.participant_id = p.id)
		FROM participant p WHERE p.event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive participant counts: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var id string
		var stored, derived int
		if err := prows.Scan(&id, &stored, &derived); err != nil {
			return nil, err
		}
		check("participant", id, "votes_used", stored, derived)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	return drift, nil
}
