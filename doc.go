// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the encore-vote API server.

encore-vote is a live event voting service: a host creates an event with
options, publishes it to get a shareable join code, and opens a voting
window; participants join, cast a bounded number of votes, and watch the
leaderboard once results are revealed. Vote counts stay consistent with the
vote ledger under concurrent load, and retried requests never double-count.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string (or sqlite path)
  - HOST_KEY_SALT (--host-salt): Secret for host key HMAC
  - JOIN_CODE_SALT (--join-salt): Secret for join code generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - BASE_URL (--base-url): Public base URL for join links

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: state machine, participant registry, eligibility, vote ledger,
    aggregation, reveal gate, reconciliation
  - handlers: HTTP request handlers (events, participation, votes, leaderboard)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - auth: Host keys, join codes, identity key generation
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
