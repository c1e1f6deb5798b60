// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    host_name TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'draft' CHECK (state IN
        ('draft', 'published', 'live', 'voting_closed', 'results_published', 'cancelled', 'archived')),
    join_code TEXT UNIQUE,
    voting_starts_at TIMESTAMP,
    voting_ends_at TIMESTAMP,
    max_votes_per_participant INTEGER NOT NULL DEFAULT 5,
    allow_multiple_per_option BOOLEAN NOT NULL DEFAULT TRUE,
    tiebreaker TEXT NOT NULL DEFAULT 'earliest_option' CHECK (tiebreaker IN ('earliest_option', 'display_order')),
    reveal_policy TEXT NOT NULL DEFAULT 'after_close' CHECK (reveal_policy IN ('after_close', 'live')),
    config_version INTEGER NOT NULL DEFAULT 1,
    total_votes INTEGER NOT NULL DEFAULT 0,
    total_participants INTEGER NOT NULL DEFAULT 0,
    total_options INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    published_at TIMESTAMP,
    closed_at TIMESTAMP,
    revealed_at TIMESTAMP,
    cancelled_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_event_join_code ON event(join_code);
CREATE INDEX IF NOT EXISTS idx_event_state ON event(state);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    display_order INTEGER NOT NULL DEFAULT 0,
    vote_count INTEGER NOT NULL DEFAULT 0,
    voter_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_option_event_id ON option(event_id);

-- Participants: one row per (event, identity). The UNIQUE constraint, not a
-- read-then-write, is what makes join idempotent under concurrency.
CREATE TABLE IF NOT EXISTS participant (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    identity_kind TEXT NOT NULL CHECK (identity_kind IN ('account', 'phone', 'anonymous')),
    identity_key TEXT NOT NULL,
    registration_method TEXT NOT NULL DEFAULT 'web',
    votes_used INTEGER NOT NULL DEFAULT 0,
    max_votes INTEGER NOT NULL,
    last_vote_at TIMESTAMP,
    joined_at TIMESTAMP NOT NULL,
    UNIQUE (event_id, identity_key),
    CHECK (votes_used <= max_votes)
);

CREATE INDEX IF NOT EXISTS idx_participant_event_id ON participant(event_id);

-- Votes: the append-only ledger. seq is this participant's Nth vote,
-- assigned under the participant row lock, so it reflects commit order.
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    cast_at TIMESTAMP NOT NULL,
    origin TEXT,
    ip_hash TEXT,
    user_agent TEXT,
    UNIQUE (participant_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_vote_event_id ON vote(event_id);
CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id);
CREATE INDEX IF NOT EXISTS idx_vote_participant_id ON vote(participant_id);

-- Vote claims: constraint backstop for the single-vote-per-option policy.
-- A row is written in the vote transaction only when the event disallows
-- multiple votes per option; the PK violation surfaces as DuplicateVote.
CREATE TABLE IF NOT EXISTS vote_claim (
    participant_id TEXT NOT NULL REFERENCES participant(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    PRIMARY KEY (participant_id, option_id)
);

-- Idempotency keys: a retried client_request_token within the window
-- returns the recorded vote instead of casting a new one.
CREATE TABLE IF NOT EXISTS idempotency_key (
    event_id TEXT NOT NULL REFERENCES event(id) ON DELETE CASCADE,
    token TEXT NOT NULL,
    vote_id TEXT NOT NULL REFERENCES vote(id) ON DELETE CASCADE,
    participant_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (event_id, token)
);

CREATE INDEX IF NOT EXISTS idx_idempotency_created_at ON idempotency_key(created_at);
`
