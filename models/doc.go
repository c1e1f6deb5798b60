// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain types and wire types for the encore-vote
API.

# Domain Types

  - Event: one voting activity with a bounded lifecycle and voting window
  - Option: a votable choice within an event
  - Participant: one admitted voter for one event, with a bounded allowance
  - Vote: one immutable unit of ballot cast by a participant for an option

# Lifecycle States

Events progress forward through:

	draft → published → live → voting_closed → results_published → archived

with cancelled reachable from any state before results_published. The
transition table lives in the engine package.

# Configuration

EventConfig is copied onto the event at creation and its
MaxVotesPerParticipant is copied onto each participant at join time, so a
host edit never retroactively changes an admitted participant's allowance.

# Denormalized Totals

Event.Totals, Option.VoteCount and Option.VoterCount are maintained by the
vote transaction in the engine package and must always equal the counts
derivable from the vote table. engine.Reconcile verifies this.
*/
package models
