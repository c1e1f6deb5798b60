// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the encore-vote API.

# Handler Types

Each handler is a struct created via a constructor taking its dependencies:

  - EventHandler: host-facing lifecycle (create, edit, options, publish,
    open, close, reveal, cancel, archive, reconcile)
  - ParticipationHandler: public join, event view, participant status
  - VoteHandler: vote casting
  - LeaderboardHandler: the aggregate read path

# Event Lifecycle

Events progress through:

	draft → published → live → voting_closed → results_published → archived

	POST /events                     → CreateEvent (returns host_key)
	PATCH /events/{id}               → UpdateEvent (draft only)
	POST /events/{id}/options        → AddOption (draft/published)
	POST /events/{id}/publish        → PublishEvent (assigns join_code)
	POST /events/{id}/open           → OpenVoting (sets the window)
	POST /events/{id}/close          → CloseVoting
	POST /events/{id}/reveal         → RevealResults (irreversible)
	POST /events/{id}/cancel         → CancelEvent
	POST /events/{id}/archive        → ArchiveEvent

Host operations require the X-Host-Key header.

# Participant Flow

Participants use the public join code:

	POST /join/{code}                         → Join (idempotent)
	POST /join/{code}/votes                   → CastVote
	GET  /join/{code}                         → GetEvent
	GET  /join/{code}/leaderboard             → GetLeaderboard
	GET  /join/{code}/participants/{id}       → GetParticipant

# Division of Labor

Handlers do request decoding, host-key checks, and status mapping. The vote
transaction, admission, eligibility, and the reveal decision belong to the
engine package; handlers never write to vote storage directly.
*/
package handlers
