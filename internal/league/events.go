package league

import (
	"context"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// Events receives notifications after a write transaction has committed.
// Implementations must not block the caller for long and cannot veto or roll
// back the transition they are told about.
type Events interface {
	MatchCompleted(ctx context.Context, match models.Match, home, away models.Team)
}

// NopEvents discards all notifications.
type NopEvents struct{}

func (NopEvents) MatchCompleted(context.Context, models.Match, models.Team, models.Team) {}
