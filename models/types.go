// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Event lifecycle states
const (
	StateDraft            = "draft"
	StatePublished        = "published"
	StateLive             = "live"
	StateVotingClosed     = "voting_closed"
	StateResultsPublished = "results_published"
	StateCancelled        = "cancelled"
	StateArchived         = "archived"
)

// Identity kinds for participants. Exactly one identity key per participant.
const (
	IdentityAccount   = "account"
	IdentityPhone     = "phone"
	IdentityAnonymous = "anonymous"
)

// Tiebreaker rules for revealed leaderboards
const (
	TiebreakEarliestOption = "earliest_option"
	TiebreakDisplayOrder   = "display_order"
)

// Reveal policies
const (
	RevealAfterClose = "after_close"
	RevealLive       = "live"
)

// EventConfig is the versioned voting configuration copied onto the event at
// creation time. Participant allowances are copied from it at join time, so
// later edits never change an already-admitted participant's allowance.
type EventConfig struct {
	MaxVotesPerParticipant int    `json:"max_votes_per_participant"`
	AllowMultiplePerOption bool   `json:"allow_multiple_per_option"`
	Tiebreaker             string `json:"tiebreaker"`
	RevealPolicy           string `json:"reveal_policy"`
	Version                int    `json:"config_version"`
}

// DefaultConfig returns the configuration applied to new events.
func DefaultConfig() EventConfig {
	return EventConfig{
		MaxVotesPerParticipant: 5,
		AllowMultiplePerOption: true,
		Tiebreaker:             TiebreakEarliestOption,
		RevealPolicy:           RevealAfterClose,
		Version:                1,
	}
}

// Request types

type CreateEventRequest struct {
	Title    string `json:"title"`
	HostName string `json:"host_name"`
}

type UpdateEventRequest struct {
	Title                  *string    `json:"title,omitempty"`
	MaxVotesPerParticipant *int       `json:"max_votes_per_participant,omitempty"`
	AllowMultiplePerOption *bool      `json:"allow_multiple_per_option,omitempty"`
	Tiebreaker             *string    `json:"tiebreaker,omitempty"`
	RevealPolicy           *string    `json:"reveal_policy,omitempty"`
	VotingStartsAt         *time.Time `json:"voting_starts_at,omitempty"`
	VotingEndsAt           *time.Time `json:"voting_ends_at,omitempty"`
}

type AddOptionRequest struct {
	Title        string `json:"title"`
	DisplayOrder *int   `json:"display_order,omitempty"`
}

type OpenVotingRequest struct {
	VotingStartsAt *time.Time `json:"voting_starts_at,omitempty"` // nil means now
	VotingEndsAt   *time.Time `json:"voting_ends_at,omitempty"`
}

type JoinRequest struct {
	IdentityKind       string `json:"identity_kind"`
	IdentityKey        string `json:"identity_key"`
	RegistrationMethod string `json:"registration_method"`
}

type CastVoteRequest struct {
	ParticipantID      string `json:"participant_id"`
	OptionID           string `json:"option_id"`
	ClientRequestToken string `json:"client_request_token,omitempty"`
}

// Response types

type CreateEventResponse struct {
	EventID string `json:"event_id"`
	HostKey string `json:"host_key"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type PublishEventResponse struct {
	JoinCode string `json:"join_code"`
	JoinURL  string `json:"join_url"`
}

type JoinResponse struct {
	ParticipantID  string `json:"participant_id"`
	IdentityKind   string `json:"identity_kind"`
	IdentityKey    string `json:"identity_key,omitempty"`
	RemainingVotes int    `json:"remaining_votes"`
	AlreadyJoined  bool   `json:"already_joined"`
}

type EventTotals struct {
	TotalVotes        int `json:"total_votes"`
	TotalParticipants int `json:"total_participants"`
	TotalOptions      int `json:"total_options"`
}

type CastVoteResponse struct {
	VoteID         string      `json:"vote_id"`
	RemainingVotes int         `json:"remaining_votes"`
	EventTotals    EventTotals `json:"event_totals"`
}

// LeaderboardOption carries the count as a string so a masked leaderboard can
// return a non-numeric placeholder without leaking the real value.
type LeaderboardOption struct {
	OptionID   string `json:"option_id"`
	Title      string `json:"title"`
	VoteCount  string `json:"vote_count_or_mask"`
	VoterCount *int   `json:"voter_count,omitempty"`
	Rank       int    `json:"rank,omitempty"`
	Active     bool   `json:"active"`
}

type LeaderboardResponse struct {
	Options     []LeaderboardOption `json:"options"`
	Revealed    bool                `json:"revealed"`
	EventTotals EventTotals         `json:"event_totals"`
	ClosesIn    string              `json:"closes_in,omitempty"`
}

type ParticipantStatusResponse struct {
	ParticipantID  string        `json:"participant_id"`
	VotesUsed      int           `json:"votes_used"`
	MaxVotes       int           `json:"max_votes"`
	RemainingVotes int           `json:"remaining_votes"`
	Votes          []VoteSummary `json:"votes"`
}

type VoteSummary struct {
	VoteID   string    `json:"vote_id"`
	OptionID string    `json:"option_id"`
	Seq      int       `json:"seq"`
	CastAt   time.Time `json:"cast_at"`
}

type EventPublicResponse struct {
	Title          string       `json:"title"`
	State          string       `json:"state"`
	VotingStartsAt *time.Time   `json:"voting_starts_at,omitempty"`
	VotingEndsAt   *time.Time   `json:"voting_ends_at,omitempty"`
	ClosesIn       string       `json:"closes_in,omitempty"`
	EventTotals    EventTotals  `json:"event_totals"`
	Options        []OptionInfo `json:"options"`
}

type OptionInfo struct {
	OptionID string `json:"option_id"`
	Title    string `json:"title"`
	Active   bool   `json:"active"`
}

// Domain types

type Event struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	HostName       string      `json:"host_name"`
	State          string      `json:"state"`
	JoinCode       *string     `json:"join_code,omitempty"`
	VotingStartsAt *time.Time  `json:"voting_starts_at,omitempty"`
	VotingEndsAt   *time.Time  `json:"voting_ends_at,omitempty"`
	Config         EventConfig `json:"config"`
	Totals         EventTotals `json:"totals"`
	CreatedAt      time.Time   `json:"created_at"`
	PublishedAt    *time.Time  `json:"published_at,omitempty"`
	ClosedAt       *time.Time  `json:"closed_at,omitempty"`
	RevealedAt     *time.Time  `json:"revealed_at,omitempty"`
	CancelledAt    *time.Time  `json:"cancelled_at,omitempty"`
}

type Option struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	Active       bool      `json:"active"`
	DisplayOrder int       `json:"display_order"`
	VoteCount    int       `json:"vote_count"`
	VoterCount   int       `json:"voter_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type Participant struct {
	ID                 string     `json:"id"`
	EventID            string     `json:"event_id"`
	IdentityKind       string     `json:"identity_kind"`
	IdentityKey        string     `json:"-"` // Never expose in JSON
	RegistrationMethod string     `json:"registration_method"`
	VotesUsed          int        `json:"votes_used"`
	MaxVotes           int        `json:"max_votes"`
	LastVoteAt         *time.Time `json:"last_vote_at,omitempty"`
	JoinedAt           time.Time  `json:"joined_at"`
}

type Vote struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	ParticipantID string    `json:"participant_id"`
	OptionID      string    `json:"option_id"`
	Seq           int       `json:"seq"`
	CastAt        time.Time `json:"cast_at"`
	Origin        *string   `json:"-"` // Never expose in JSON
	IPHash        *string   `json:"-"` // Never expose in JSON
	UserAgent     *string   `json:"-"` // Never expose in JSON
}

// VoteAudit is the request-scoped metadata recorded with each vote.
type VoteAudit struct {
	Origin    string
	IPHash    string
	UserAgent string
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
