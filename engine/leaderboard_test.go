// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/danielhkuo/encore-vote/models"
	"github.com/danielhkuo/encore-vote/testutil"
)

func TestRevealed(t *testing.T) {
	tests := []struct {
		state  string
		policy string
		want   bool
	}{
		{models.StateDraft, models.RevealAfterClose, false},
		{models.StatePublished, models.RevealAfterClose, false},
		{models.StateLive, models.RevealAfterClose, false},
		{models.StateVotingClosed, models.RevealAfterClose, false},
		{models.StateResultsPublished, models.RevealAfterClose, true},
		{models.StateArchived, models.RevealAfterClose, true},
		{models.StateCancelled, models.RevealAfterClose, false},
		{models.StateLive, models.RevealLive, true},
		{models.StateVotingClosed, models.RevealLive, true},
		{models.StateCancelled, models.RevealLive, false},
		{models.StateDraft, models.RevealLive, false},
	}
	for _, tt := range tests {
		ev := models.Event{State: tt.state}
		ev.Config.RevealPolicy = tt.policy
		if got := Revealed(ev); got != tt.want {
			t.Errorf("Revealed(%s, %s) = %v, want %v", tt.state, tt.policy, got, tt.want)
		}
	}
}

// Sealed leaderboards keep display order and mask every count. Order must
// not correlate with standings, so the most popular option is deliberately
// placed last.
func TestLeaderboardSealed(t *testing.T) {
	eng, conn := newTestEngine(t)
	defer conn.Close()
	ctx := context.Background()
	cfg := testutil.GetTestConfig()

	eventID, _, _ := testutil.CreateTestEvent(t, conn, cfg, models.StateLive, testutil.DefaultFixture())
	optA := testutil.AddTestOption(t, conn, eventID, "A", 0)
	testutil.AddTestOption(t, conn, eventID, "B", 1)
	optC := testutil.AddTestOption(t, conn, eventID, "C", 2)

	p1 := testutil.CreateTestParticipant(t, conn, eventID, "voter-1", 5)
	p2 := testutil.CreateTestParticipant(t, conn, eventID, "voter-2", 5)
	castTestVote(t, eng, eventID, p1, optC)
	castTestVote(t, eng, eventID, p2, optC)
	castTestVote(t, eng, eventID, p1, optA)

	ev, err := eng.EventByID(ctx, eventID)
	if err != nil {
		t.Fatalf("EventByID failed: %v", err)
	}
	lb, err := eng.Leaderboard(ctx, ev)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if lb.Revealed {
		t.Error("leaderboard should be sealed while voting is open")
	}
	if lb.ClosesIn == "" {
		t.Error("ClosesIn should be set for a live event with an end time")
	}
	wantOrder := []string{"A", "B", "C"}
	for i, opt := range lb.Options {
		if opt.Title != wantOrder[i] {
			t.Errorf("position %d: got %q, want %q (display order)", i, opt.Title, wantOrder[i])
		}
		if opt.VoteCount != countMask {
			t.Errorf("option %q: VoteCount = %q, want mask", opt.Title, opt.VoteCount)
		}
		if opt.VoterCount != nil {
			t.Errorf("option %q: VoterCount should be omitted while sealed", opt.Title)
		}
		if opt.Rank != 0 {
			t.Errorf("option %q: Rank = %d, want unset", opt.Title, opt.Rank)
		}
	}
	// Totals stay visible even when per-option counts are masked
	if lb.EventTotals.TotalVotes != 3 {
		t.Errorf("TotalVotes = %d, want 3", lb.EventTotals.TotalVotes)
	}
}

func TestLeaderboardRevealed(t *testing.T) {
	eng, conn := newTestEngine(t)
	defer conn.Close()
	ctx := context.Background()
	cfg := testutil.GetTestConfig()

	eventID, _, _ := testutil.CreateTestEvent(t, conn, cfg, models.StateLive, testutil.DefaultFixture())
	optA := testutil.AddTestOption(t, conn, eventID, "A", 0)
	testutil.AddTestOption(t, conn, eventID, "B", 1)
	optC := testutil.AddTestOption(t, conn, eventID, "C", 2)

	p1 := testutil.CreateTestParticipant(t, conn, eventID, "voter-1", 5)
	p2 := testutil.CreateTestParticipant(t, conn, eventID, "voter-2", 5)
	castTestVote(t, eng, eventID, p1, optC)
	castTestVote(t, eng, eventID, p2, optC)
	castTestVote(t, eng, eventID, p1, optA)

	if _, err := conn.Exec(`UPDATE event SET state = $1 WHERE id = $2`, models.StateResultsPublished, eventID); err != nil {
		t.Fatalf("state update failed: %v", err)
	}

	ev, err := eng.EventByID(ctx, eventID)
	if err != nil {
		t.Fatalf("EventByID failed: %v", err)
	}
	lb, err := eng.Leaderboard(ctx, ev)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}

	if !lb.Revealed {
		t.Fatal("leaderboard should be revealed after results are published")
	}
	wantTitles := []string{"C", "A", "B"}
	wantCounts := []string{"2", "1", "0"}
	for i, opt := range lb.Options {
		if opt.Title != wantTitles[i] {
			t.Errorf("rank %d: got %q, want %q", i+1, opt.Title, wantTitles[i])
		}
		if opt.VoteCount != wantCounts[i] {
			t.Errorf("rank %d: VoteCount = %q, want %q", i+1, opt.VoteCount, wantCounts[i])
		}
		if opt.Rank != i+1 {
			t.Errorf("rank %d: Rank = %d", i+1, opt.Rank)
		}
		if opt.VoterCount == nil {
			t.Errorf("rank %d: VoterCount missing", i+1)
		}
	}
}

func TestLeaderboardCancelledNeverReveals(t *testing.T) {
	eng, conn := newTestEngine(t)
	defer conn.Close()
	ctx := context.Background()
	cfg := testutil.GetTestConfig()

	fx := testutil.DefaultFixture()
	fx.RevealPolicy = models.RevealLive
	eventID, _, _ := testutil.CreateTestEvent(t, conn, cfg, models.StateCancelled, fx)
	testutil.AddTestOption(t, conn, eventID, "A", 0)
	testutil.AddTestOption(t, conn, eventID, "B", 1)

	ev, err := eng.EventByID(ctx, eventID)
	if err != nil {
		t.Fatalf("EventByID failed: %v", err)
	}
	lb, err := eng.Leaderboard(ctx, ev)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if lb.Revealed {
		t.Fatal("cancelled events must stay sealed")
	}
	for _, opt := range lb.Options {
		if opt.VoteCount != countMask {
			t.Errorf("option %q: VoteCount = %q, want mask", opt.Title, opt.VoteCount)
		}
	}
}

func TestLeaderboardLivePolicy(t *testing.T) {
	eng, conn := newTestEngine(t)
	defer conn.Close()
	ctx := context.Background()
	cfg := testutil.GetTestConfig()

	fx := testutil.DefaultFixture()
	fx.RevealPolicy = models.RevealLive
	eventID, _, _ := testutil.CreateTestEvent(t, conn, cfg, models.StateLive, fx)
	optA := testutil.AddTestOption(t, conn, eventID, "A", 0)
	testutil.AddTestOption(t, conn, eventID, "B", 1)

	p1 := testutil.CreateTestParticipant(t, conn, eventID, "voter-1", 5)
	castTestVote(t, eng, eventID, p1, optA)

	ev, err := eng.EventByID(ctx, eventID)
	if err != nil {
		t.Fatalf("EventByID failed: %v", err)
	}
	lb, err := eng.Leaderboard(ctx, ev)
	if err != nil {
		t.Fatalf("Leaderboard failed: %v", err)
	}
	if !lb.Revealed {
		t.Fatal("live reveal policy should expose counts during voting")
	}
	if lb.Options[0].Title != "A" || lb.Options[0].VoteCount != "1" {
		t.Errorf("top entry = %q/%q, want A/1", lb.Options[0].Title, lb.Options[0].VoteCount)
	}
}

func TestSortRankedTiebreakers(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id string, count, order int, created time.Time) models.Option {
		return models.Option{ID: id, VoteCount: count, DisplayOrder: order, CreatedAt: created}
	}

	options := []models.Option{
		mk("b", 3, 1, base.Add(time.Minute)),
		mk("a", 3, 2, base),
		mk("c", 5, 3, base.Add(2*time.Minute)),
	}
	sortRanked(options, models.TiebreakEarliestOption)
	if options[0].ID != "c" || options[1].ID != "a" || options[2].ID != "b" {
		t.Errorf("earliest_option order = %s,%s,%s, want c,a,b", options[0].ID, options[1].ID, options[2].ID)
	}

	options = []models.Option{
		mk("b", 3, 1, base.Add(time.Minute)),
		mk("a", 3, 2, base),
		mk("c", 5, 3, base.Add(2*time.Minute)),
	}
	sortRanked(options, models.TiebreakDisplayOrder)
	if options[0].ID != "c" || options[1].ID != "b" || options[2].ID != "a" {
		t.Errorf("display_order order = %s,%s,%s, want c,b,a", options[0].ID, options[1].ID, options[2].ID)
	}
}

func castTestVote(t *testing.T, eng *Engine, eventID, participantID, optionID string) {
	t.Helper()
	_, err := eng.CastVote(context.Background(), eventID, models.CastVoteRequest{
		ParticipantID: participantID,
		OptionID:      optionID,
	}, models.VoteAudit{})
	if err != nil {
		t.Fatalf("vote failed: %v", err)
	}
}
