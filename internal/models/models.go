// internal/models/models.go
package models

import (
	"strings"
	"time"
)

type TeamStatus string

const (
	TeamPending  TeamStatus = "pending"
	TeamApproved TeamStatus = "approved"
	TeamRejected TeamStatus = "rejected"
)

type LeagueTier string

const (
	TierA LeagueTier = "A"
	TierB LeagueTier = "B"
	TierC LeagueTier = "C"
)

type MatchStatus string

const (
	MatchScheduled       MatchStatus = "scheduled"
	MatchResultSubmitted MatchStatus = "result_submitted"
	MatchCompleted       MatchStatus = "completed"
	MatchCancelled       MatchStatus = "cancelled"
)

// Team is a registered league team plus its aggregate standings counters.
// Counters only move through the match confirmation path or an explicit
// admin reversal; they are never edited directly.
type Team struct {
	ID           string
	Name         string
	CaptainName  string
	CaptainEmail string
	CaptainPhone string
	Status       TeamStatus
	Tier         LeagueTier

	Points   int
	Wins     int
	Draws    int
	Losses   int
	LegsWon  int
	LegsLost int
	SetsWon  int
	SetsLost int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MatchesPlayed is the number of completed matches this team was part of.
func (t Team) MatchesPlayed() int {
	return t.Wins + t.Draws + t.Losses
}

// LegDifference is the standings tiebreaker after points.
func (t Team) LegDifference() int {
	return t.LegsWon - t.LegsLost
}

type Player struct {
	ID                    string
	Name                  string
	TeamID                string // empty when unattached
	IsCaptain             bool
	LookingForTeam        bool
	AvailableAsSubstitute bool
	CreatedAt             time.Time
}

// Match is a single fixture between two teams. Scores are meaningful once
// the status is result_submitted or later.
type Match struct {
	ID         string
	HomeTeamID string
	AwayTeamID string
	Matchday   int
	Date       time.Time
	Status     MatchStatus

	HomeLegs int
	AwayLegs int
	HomeSets int
	AwaySets int

	SubmittedByTeamID     string
	NeedsConfirmationFrom string
	ResultPhotoURL        string
	ResultConfirmed       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Involves reports whether teamID is one of the two participants.
func (m Match) Involves(teamID string) bool {
	return teamID != "" && (teamID == m.HomeTeamID || teamID == m.AwayTeamID)
}

// Opponent returns the other participant, or "" if teamID is not playing.
func (m Match) Opponent(teamID string) string {
	switch teamID {
	case m.HomeTeamID:
		return m.AwayTeamID
	case m.AwayTeamID:
		return m.HomeTeamID
	}
	return ""
}

// LegResult is one individual pairing inside a match, recorded when a
// captain submits a detailed result. Averages of zero mean "not reported".
type LegResult struct {
	ID           string
	MatchID      string
	HomePlayerID string
	AwayPlayerID string
	HomeLegs     int
	AwayLegs     int

	HomeAverage    float64
	AwayAverage    float64
	HomeHighFinish int
	AwayHighFinish int
	HomeCenturies  int
	AwayCenturies  int
}

// PlayerStats is derived state, created lazily on the first detailed result
// that references the player and updated additively afterwards.
type PlayerStats struct {
	PlayerID      string
	MatchesPlayed int
	MatchesWon    int
	MatchesLost   int
	LegsWon       int
	LegsLost      int
	LegDifference int
	Average       float64
	HighFinish    int
	CenturyCount  int
	UpdatedAt     time.Time
}

// ParseTeamStatus validates a status string from the API or database.
func ParseTeamStatus(raw string) (TeamStatus, bool) {
	switch TeamStatus(strings.TrimSpace(raw)) {
	case TeamPending:
		return TeamPending, true
	case TeamApproved:
		return TeamApproved, true
	case TeamRejected:
		return TeamRejected, true
	}
	return "", false
}

// ParseLeagueTier validates a tier string, accepting lower case input.
func ParseLeagueTier(raw string) (LeagueTier, bool) {
	switch LeagueTier(strings.ToUpper(strings.TrimSpace(raw))) {
	case TierA:
		return TierA, true
	case TierB:
		return TierB, true
	case TierC:
		return TierC, true
	}
	return "", false
}

// ParseMatchStatus validates a match status string.
func ParseMatchStatus(raw string) (MatchStatus, bool) {
	switch MatchStatus(strings.TrimSpace(raw)) {
	case MatchScheduled:
		return MatchScheduled, true
	case MatchResultSubmitted:
		return MatchResultSubmitted, true
	case MatchCompleted:
		return MatchCompleted, true
	case MatchCancelled:
		return MatchCancelled, true
	}
	return "", false
}
