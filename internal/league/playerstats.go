package league

import (
	"context"
	"errors"
	"time"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// applyStoredLegResults folds every leg result recorded for the match into
// the participating players' cumulative statistics. Runs inside the
// confirmation transaction so the stats land together with the team update.
func applyStoredLegResults(ctx context.Context, tx Store, matchID string) error {
	results, err := tx.ListLegResults(ctx, matchID)
	if err != nil {
		return err
	}
	for _, result := range results {
		home := playerSide{
			playerID:   result.HomePlayerID,
			legsWon:    result.HomeLegs,
			legsLost:   result.AwayLegs,
			average:    result.HomeAverage,
			highFinish: result.HomeHighFinish,
			centuries:  result.HomeCenturies,
		}
		away := playerSide{
			playerID:   result.AwayPlayerID,
			legsWon:    result.AwayLegs,
			legsLost:   result.HomeLegs,
			average:    result.AwayAverage,
			highFinish: result.AwayHighFinish,
			centuries:  result.AwayCenturies,
		}
		if err := applyPlayerSide(ctx, tx, home); err != nil {
			return err
		}
		if err := applyPlayerSide(ctx, tx, away); err != nil {
			return err
		}
	}
	return nil
}

type playerSide struct {
	playerID   string
	legsWon    int
	legsLost   int
	average    float64
	highFinish int
	centuries  int
}

// applyPlayerSide adds one pairing's outcome to a player's stats, creating
// the row at zero on first sight. An equal-legs pairing counts as played but
// neither won nor lost.
func applyPlayerSide(ctx context.Context, tx Store, side playerSide) error {
	stats, err := tx.GetPlayerStats(ctx, side.playerID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		stats = models.PlayerStats{PlayerID: side.playerID}
	}

	stats.MatchesPlayed++
	switch {
	case side.legsWon > side.legsLost:
		stats.MatchesWon++
	case side.legsWon < side.legsLost:
		stats.MatchesLost++
	}
	stats.LegsWon += side.legsWon
	stats.LegsLost += side.legsLost
	stats.LegDifference = stats.LegsWon - stats.LegsLost
	if side.average > 0 {
		stats.Average = side.average
	}
	if side.highFinish > stats.HighFinish {
		stats.HighFinish = side.highFinish
	}
	stats.CenturyCount += side.centuries
	stats.UpdatedAt = time.Now().UTC()

	return tx.UpsertPlayerStats(ctx, stats)
}
