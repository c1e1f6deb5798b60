// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the voting core: the event state machine, the
participant registry, the eligibility checker, the vote ledger with its
aggregation counters, and the leaderboard reveal gate.

# Control Flow

A vote-cast request flows through:

	registry (who is voting) → state machine (is voting open) →
	eligibility (may they vote) → ledger insert → counter updates

The last three happen inside one transaction in CastVote; the handlers never
touch vote storage directly.

# Concurrency

CastVote is the only blocking operation. It locks the participant row first
and the option row second (consistent ordering prevents deadlock), re-checks
eligibility under those locks, and commits the ledger insert together with
all counter updates. Locks are held only for the transaction, never across
network I/O. Reads (Leaderboard, ParticipantByID) use the latest committed
counters without locking.

Lock contention surfaces as ErrConcurrencyConflict and is the only error
class the engine retries itself (bounded attempts with jittered backoff).

# Idempotency

A client that times out may retry with the same client_request_token; within
a 24 hour window the engine returns the recorded vote without incrementing
anything. The token table's primary key resolves concurrent duplicates.

# Counter Consistency

Event totals, option counts, and participant allowances are denormalized for
read performance but must always equal counts derived from the vote table.
Reconcile recomputes everything from the ledger and reports drift; the test
suite asserts an empty report after every scenario.

# State Machine

	draft → published → live → voting_closed → results_published → archived

cancelled is reachable from any state before results_published. Only live
accepts votes; published and live accept joins; draft and published accept
option edits. A live event whose window end has elapsed is closed lazily on
the next vote or read - never re-opened.
*/
package engine
