package league

import (
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

const (
	pointsForWin  = 3
	pointsForDraw = 1
)

// teamDelta is one team's share of a completed match, from that team's own
// perspective. The same delta is subtracted when a completed result is
// reversed, so apply and reverse always cancel exactly.
type teamDelta struct {
	Points   int
	Wins     int
	Draws    int
	Losses   int
	LegsWon  int
	LegsLost int
	SetsWon  int
	SetsLost int
}

// matchDeltas computes the home and away deltas for the given scores.
// Home wins when home legs exceed away legs, equal legs is a draw.
func matchDeltas(match models.Match) (home, away teamDelta) {
	home = teamDelta{
		LegsWon:  match.HomeLegs,
		LegsLost: match.AwayLegs,
		SetsWon:  match.HomeSets,
		SetsLost: match.AwaySets,
	}
	away = teamDelta{
		LegsWon:  match.AwayLegs,
		LegsLost: match.HomeLegs,
		SetsWon:  match.AwaySets,
		SetsLost: match.HomeSets,
	}

	switch {
	case match.HomeLegs > match.AwayLegs:
		home.Wins, home.Points = 1, pointsForWin
		away.Losses = 1
	case match.HomeLegs < match.AwayLegs:
		away.Wins, away.Points = 1, pointsForWin
		home.Losses = 1
	default:
		home.Draws, home.Points = 1, pointsForDraw
		away.Draws, away.Points = 1, pointsForDraw
	}
	return home, away
}

func applyDelta(team *models.Team, delta teamDelta) {
	team.Points += delta.Points
	team.Wins += delta.Wins
	team.Draws += delta.Draws
	team.Losses += delta.Losses
	team.LegsWon += delta.LegsWon
	team.LegsLost += delta.LegsLost
	team.SetsWon += delta.SetsWon
	team.SetsLost += delta.SetsLost
}

func reverseDelta(team *models.Team, delta teamDelta) {
	team.Points -= delta.Points
	team.Wins -= delta.Wins
	team.Draws -= delta.Draws
	team.Losses -= delta.Losses
	team.LegsWon -= delta.LegsWon
	team.LegsLost -= delta.LegsLost
	team.SetsWon -= delta.SetsWon
	team.SetsLost -= delta.SetsLost
}
