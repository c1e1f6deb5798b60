// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/encore-vote/models"
)

// countMask replaces real vote counts while results are sealed.
const countMask = "•••"

// Revealed reports whether true counts may be exposed for this event right
// now. Cancelled events never reveal; the live reveal policy exposes counts
// from the moment voting opens.
func Revealed(ev models.Event) bool {
	switch ev.State {
	case models.StateResultsPublished, models.StateArchived:
		return true
	case models.StateLive, models.StateVotingClosed:
		return ev.Config.RevealPolicy == models.RevealLive
	default:
		return false
	}
}

// Leaderboard builds the external aggregate view for an event. Sealed
// leaderboards return options in display order with masked counts, so
// neither the numbers nor the ordering leaks a ranking. Revealed
// leaderboards sort by vote count descending with the event's configured
// tiebreaker.
func (e *Engine) Leaderboard(ctx context.Context, ev models.Event) (models.LeaderboardResponse, error) {
	now := time.Now()
	ev, err := e.MaybeAutoClose(ctx, ev, now)
	if err != nil {
		return models.LeaderboardResponse{}, err
	}

	options, err := e.Options(ctx, ev.ID)
	if err != nil {
		return models.LeaderboardResponse{}, err
	}

	revealed := Revealed(ev)
	resp := models.LeaderboardResponse{
		Revealed:    revealed,
		EventTotals: ev.Totals,
		Options:     make([]models.LeaderboardOption, 0, len(options)),
	}
	if ev.State == models.StateLive && ev.VotingEndsAt != nil {
		resp.ClosesIn = humanize.Time(*ev.VotingEndsAt)
	}

	if revealed {
		sortRanked(options, ev.Config.Tiebreaker)
	}
	// Options arrive in display order already, which is the stable,
	// rank-independent order the sealed view requires.

	for i, opt := range options {
		entry := models.LeaderboardOption{
			OptionID:  opt.ID,
			Title:     opt.Title,
			VoteCount: countMask,
			Active:    opt.Active,
		}
		if revealed {
			entry.VoteCount = strconv.Itoa(opt.VoteCount)
			voters := opt.VoterCount
			entry.VoterCount = &voters
			entry.Rank = i + 1
		}
		resp.Options = append(resp.Options, entry)
	}

	return resp, nil
}

// sortRanked orders options by vote count descending, breaking ties with
// the configured rule. earliest_option favors the earliest-registered
// option; display_order favors the host's arrangement.
func sortRanked(options []models.Option, tiebreaker string) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if a.VoteCount != b.VoteCount {
			return a.VoteCount > b.VoteCount
		}
		switch tiebreaker {
		case models.TiebreakDisplayOrder:
			if a.DisplayOrder != b.DisplayOrder {
				return a.DisplayOrder < b.DisplayOrder
			}
		default: // earliest_option
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}
