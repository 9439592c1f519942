package league

import (
	"sort"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

type Standing struct {
	Position      int    `json:"position"`
	TeamID        string `json:"teamId"`
	TeamName      string `json:"teamName"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	Points        int    `json:"points"`
	LegsWon       int    `json:"legsWon"`
	LegsLost      int    `json:"legsLost"`
	LegDifference int    `json:"legDifference"`
	SetsWon       int    `json:"setsWon"`
	SetsLost      int    `json:"setsLost"`
}

// ComputeStandings builds the table for the given teams from their aggregate
// counters: points, then leg difference, then legs won, then name. Only
// approved teams appear; pending and rejected registrations are skipped.
func ComputeStandings(teams []models.Team) []Standing {
	standings := make([]Standing, 0, len(teams))
	for _, team := range teams {
		if team.Status != models.TeamApproved {
			continue
		}
		standings = append(standings, Standing{
			TeamID:        team.ID,
			TeamName:      team.Name,
			MatchesPlayed: team.MatchesPlayed(),
			Wins:          team.Wins,
			Draws:         team.Draws,
			Losses:        team.Losses,
			Points:        team.Points,
			LegsWon:       team.LegsWon,
			LegsLost:      team.LegsLost,
			LegDifference: team.LegDifference(),
			SetsWon:       team.SetsWon,
			SetsLost:      team.SetsLost,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].LegDifference != standings[j].LegDifference {
			return standings[i].LegDifference > standings[j].LegDifference
		}
		if standings[i].LegsWon != standings[j].LegsWon {
			return standings[i].LegsWon > standings[j].LegsWon
		}
		return standings[i].TeamName < standings[j].TeamName
	})

	for i := range standings {
		standings[i].Position = i + 1
	}
	return standings
}
