package league

import (
	"testing"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

func TestComputeStandings_Ordering(t *testing.T) {
	teams := []models.Team{
		{ID: "t1", Name: "Treble Trouble", Status: models.TeamApproved, Points: 6, Wins: 2, LegsWon: 8, LegsLost: 4},
		{ID: "t2", Name: "Bullseye Bandits", Status: models.TeamApproved, Points: 9, Wins: 3, LegsWon: 9, LegsLost: 2},
		{ID: "t3", Name: "Mad House", Status: models.TeamApproved, Points: 6, Wins: 2, LegsWon: 9, LegsLost: 5},
	}

	standings := ComputeStandings(teams)
	if len(standings) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(standings))
	}

	wantOrder := []string{"t2", "t3", "t1"}
	for i, want := range wantOrder {
		if standings[i].TeamID != want {
			t.Errorf("position %d = %s, want %s", i+1, standings[i].TeamID, want)
		}
		if standings[i].Position != i+1 {
			t.Errorf("row %d position = %d", i, standings[i].Position)
		}
	}

	// t3 edges t1 on leg difference with equal points.
	if standings[1].LegDifference != 4 || standings[2].LegDifference != 4 {
		t.Errorf("leg differences = %d and %d, want 4 and 4", standings[1].LegDifference, standings[2].LegDifference)
	}
	if standings[1].LegsWon <= standings[2].LegsWon {
		t.Errorf("legs-won tiebreak: %d vs %d", standings[1].LegsWon, standings[2].LegsWon)
	}
}

func TestComputeStandings_NameBreaksFullTies(t *testing.T) {
	teams := []models.Team{
		{ID: "t1", Name: "Zebra Darts", Status: models.TeamApproved, Points: 3, LegsWon: 3, LegsLost: 1},
		{ID: "t2", Name: "Alpha Arrows", Status: models.TeamApproved, Points: 3, LegsWon: 3, LegsLost: 1},
	}

	standings := ComputeStandings(teams)
	if standings[0].TeamName != "Alpha Arrows" {
		t.Errorf("first row = %s, want Alpha Arrows", standings[0].TeamName)
	}
}

func TestComputeStandings_OnlyApprovedTeams(t *testing.T) {
	teams := []models.Team{
		{ID: "t1", Name: "Approved", Status: models.TeamApproved},
		{ID: "t2", Name: "Pending", Status: models.TeamPending},
		{ID: "t3", Name: "Rejected", Status: models.TeamRejected},
	}

	standings := ComputeStandings(teams)
	if len(standings) != 1 {
		t.Fatalf("expected 1 row, got %d", len(standings))
	}
	if standings[0].TeamID != "t1" {
		t.Errorf("row = %s, want t1", standings[0].TeamID)
	}
}

func TestComputeStandings_Empty(t *testing.T) {
	if standings := ComputeStandings(nil); len(standings) != 0 {
		t.Errorf("expected empty table, got %d rows", len(standings))
	}
}

func TestMatchDeltas(t *testing.T) {
	home, away := matchDeltas(models.Match{HomeLegs: 3, AwayLegs: 1, HomeSets: 1})
	if home.Points != 3 || home.Wins != 1 || home.Losses != 0 {
		t.Errorf("home win delta = %+v", home)
	}
	if away.Points != 0 || away.Losses != 1 {
		t.Errorf("away loss delta = %+v", away)
	}
	if home.LegsWon != 3 || home.LegsLost != 1 || away.LegsWon != 1 || away.LegsLost != 3 {
		t.Error("leg counters do not mirror")
	}

	home, away = matchDeltas(models.Match{HomeLegs: 2, AwayLegs: 2})
	if home.Points != 1 || away.Points != 1 || home.Draws != 1 || away.Draws != 1 {
		t.Errorf("draw deltas = %+v / %+v", home, away)
	}
}

func TestApplyAndReverseDeltaCancel(t *testing.T) {
	team := models.Team{ID: "t1", Points: 4, Wins: 1, Draws: 1, LegsWon: 7, LegsLost: 5}
	before := team

	_, delta := matchDeltas(models.Match{HomeLegs: 1, AwayLegs: 3, AwaySets: 1})
	applyDelta(&team, delta)
	reverseDelta(&team, delta)

	if team != before {
		t.Errorf("apply then reverse changed the team: %+v != %+v", team, before)
	}
}
