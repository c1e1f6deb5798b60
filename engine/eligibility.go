// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"time"

	"github.com/danielhkuo/encore-vote/models"
)

// Eligibility is the decision returned by CheckEligibility. When Eligible is
// false, Err is the taxonomy error and Reason a human-readable detail.
type Eligibility struct {
	Eligible       bool
	Err            error
	Reason         string
	RemainingVotes int
}

// CheckEligibility decides whether a participant may cast a vote for an
// option right now. It is a pure function with no side effects; the vote
// transaction re-evaluates it under row locks immediately before the ledger
// write, so there is no check/act race. Rules run in order and the first
// failure wins. State is checked before the window, so an event manually
// left live past its window reports the window, and any other state reports
// the state.
func CheckEligibility(ev models.Event, p models.Participant, opt models.Option, votedForOption bool, now time.Time) Eligibility {
	deny := func(err error, reason string) Eligibility {
		return Eligibility{Eligible: false, Err: err, Reason: reason}
	}

	if ev.State != models.StateLive {
		return deny(ErrEventNotVotable, "event is not live")
	}
	if !withinWindow(ev, now) {
		return deny(ErrEventNotVotable, "outside the voting window")
	}
	if p.EventID != ev.ID {
		// Cross-event token reuse is indistinguishable from a bad ID.
		return deny(ErrParticipantNotFound, "participant does not belong to this event")
	}
	if opt.EventID != ev.ID {
		return deny(ErrOptionNotFound, "option does not belong to this event")
	}
	if !opt.Active {
		return deny(ErrOptionInactive, "option is no longer votable")
	}
	if p.VotesUsed >= p.MaxVotes {
		return deny(ErrVoteLimitReached, "participant has used all votes")
	}
	if !ev.Config.AllowMultiplePerOption && votedForOption {
		return deny(ErrDuplicateVote, "participant already voted for this option")
	}

	return Eligibility{
		Eligible:       true,
		RemainingVotes: p.MaxVotes - p.VotesUsed,
	}
}
