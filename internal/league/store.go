package league

import (
	"context"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// Store is the data access the confirmation workflow needs. Implementations
// live in internal/store; the service never touches a concrete backend.
//
// UpdateMatchIfStatus is the optimistic concurrency primitive: it writes the
// match only while its stored status still equals expect and returns
// ErrConflict otherwise, so two racing confirmations cannot both apply the
// standings update.
type Store interface {
	GetTeam(ctx context.Context, id string) (models.Team, error)
	UpdateTeam(ctx context.Context, team models.Team) error

	GetMatch(ctx context.Context, id string) (models.Match, error)
	UpdateMatchIfStatus(ctx context.Context, match models.Match, expect models.MatchStatus) error
	DeleteMatch(ctx context.Context, id string) error

	GetPlayer(ctx context.Context, id string) (models.Player, error)
	GetPlayerStats(ctx context.Context, playerID string) (models.PlayerStats, error)
	UpsertPlayerStats(ctx context.Context, stats models.PlayerStats) error

	ReplaceLegResults(ctx context.Context, matchID string, results []models.LegResult) error
	ListLegResults(ctx context.Context, matchID string) ([]models.LegResult, error)
	DeleteLegResults(ctx context.Context, matchID string) error

	// RunInTx runs fn atomically: either every write fn makes is visible or
	// none are. fn must use the Store it receives, not the outer one.
	RunInTx(ctx context.Context, fn func(Store) error) error
}
