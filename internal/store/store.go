// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// Store is the full data-access surface: the subset the confirmation
// workflow depends on (league.Store) plus the plain CRUD the HTTP handlers
// use. Lookups by unique key are explicit methods; there is no
// filter-then-take-first idiom.
type Store interface {
	league.Store

	CreateTeam(ctx context.Context, team models.Team) (models.Team, error)
	GetTeamByName(ctx context.Context, name string) (models.Team, error)
	ListTeams(ctx context.Context, filter TeamFilter) ([]models.Team, error)
	DeleteTeam(ctx context.Context, id string) error

	CreatePlayer(ctx context.Context, player models.Player) (models.Player, error)
	ListPlayers(ctx context.Context, filter PlayerFilter) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, player models.Player) error
	DeletePlayer(ctx context.Context, id string) error

	CreateMatches(ctx context.Context, matches []models.Match) ([]models.Match, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]models.Match, error)

	ListPlayerStats(ctx context.Context) ([]models.PlayerStats, error)
}

type TeamFilter struct {
	Status *models.TeamStatus
	Tier   *models.LeagueTier
}

type PlayerFilter struct {
	TeamID                *string
	LookingForTeam        *bool
	AvailableAsSubstitute *bool
}

type MatchFilter struct {
	TeamID   *string
	Status   *models.MatchStatus
	Matchday *int
	DateFrom *time.Time
	DateTo   *time.Time
}
