package league

import (
	"time"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// GenerateSchedule produces a double round robin for the given teams: every
// team meets every other team twice, once at home and once away, with the
// second leg mirroring the first. Rounds are played weekly starting at
// startDate. The output is deterministic for a given team order and start
// date so a published schedule can be regenerated bit for bit; ids and
// timestamps are assigned by the store on insert, not here.
func GenerateSchedule(teams []models.Team, startDate time.Time) ([]models.Match, error) {
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}
	seen := make(map[string]struct{}, len(teams))
	for _, team := range teams {
		if team.ID == "" {
			return nil, ValidationError{Field: "teams", Reason: "contains a team without an id"}
		}
		if _, dup := seen[team.ID]; dup {
			return nil, ValidationError{Field: "teams", Reason: "contains duplicate team ids"}
		}
		seen[team.ID] = struct{}{}
	}

	rounds := buildRoundRobinRounds(teams)
	startDate = truncateDate(startDate)

	matches := make([]models.Match, 0, 2*len(rounds)*len(teams)/2)
	for r, round := range rounds {
		date := startDate.AddDate(0, 0, 7*r)
		for _, pairing := range round {
			matches = append(matches, newScheduledMatch(pairing.home, pairing.away, r+1, date))
		}
	}
	// Second leg: same rounds with home and away swapped, matchdays
	// continuing after the first leg.
	for r, round := range rounds {
		matchday := len(rounds) + r + 1
		date := startDate.AddDate(0, 0, 7*(len(rounds)+r))
		for _, pairing := range round {
			matches = append(matches, newScheduledMatch(pairing.away, pairing.home, matchday, date))
		}
	}
	return matches, nil
}

type pairing struct {
	home string
	away string
}

// buildRoundRobinRounds runs the circle method: the first team stays fixed,
// everyone else rotates one seat per round. An odd team count gets a nil bye
// seat; pairings against the bye are skipped.
func buildRoundRobinRounds(teams []models.Team) [][]pairing {
	working := make([]*models.Team, 0, len(teams)+1)
	for i := range teams {
		working = append(working, &teams[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil)
	}

	roundCount := len(working) - 1
	rounds := make([][]pairing, 0, roundCount)

	for round := 0; round < roundCount; round++ {
		var current []pairing
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil || right == nil {
				continue
			}
			current = append(current, pairing{home: left.ID, away: right.ID})
		}
		rounds = append(rounds, current)
		rotateSeats(working)
	}
	return rounds
}

func rotateSeats(seats []*models.Team) {
	if len(seats) <= 2 {
		return
	}
	last := seats[len(seats)-1]
	copy(seats[2:], seats[1:len(seats)-1])
	seats[1] = last
}

func newScheduledMatch(homeID, awayID string, matchday int, date time.Time) models.Match {
	return models.Match{
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Matchday:   matchday,
		Date:       date,
		Status:     models.MatchScheduled,
	}
}

func truncateDate(value time.Time) time.Time {
	loc := value.Location()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, loc)
}
