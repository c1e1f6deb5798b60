// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Drivers

Open selects the driver from the configured database type:

	conn, dialect, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Postgres (lib/pq) is the primary target; sqlite (modernc.org/sqlite) is
supported for small single-node deployments. The returned Dialect tells the
engine how to phrase row locks (postgres uses SELECT ... FOR UPDATE, sqlite
serializes writers on the database lock).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - event: lifecycle state, voting window, config, denormalized totals
  - option: votable choices with denormalized vote/voter counts
  - participant: one admitted voter per (event, identity key)
  - vote: the append-only vote ledger, source of truth for all counts
  - vote_claim: uniqueness backstop for single-vote-per-option events
  - idempotency_key: de-duplication of retried vote requests

# Relationships

	event 1──* option
	event 1──* participant
	event 1──* vote
	participant 1──* vote
	option 1──* vote

All foreign keys use ON DELETE CASCADE. Votes are never updated in place;
counters on event/option/participant are maintained by the same transaction
that inserts the vote, and engine.Reconcile can recompute every counter from
the vote table to assert they match.
*/
package db
