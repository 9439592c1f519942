package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

const notifyTimeout = 5 * time.Second

// Notifier delivers post-commit notifications to team captains. Failures are
// logged and ignored: email never blocks or rolls back a league transition.
type Notifier struct {
	sender     Sender
	leagueName string
	logger     *zerolog.Logger
}

func NewNotifier(sender Sender, leagueName string, logger *zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, leagueName: leagueName, logger: logger}
}

// MatchCompleted implements league.Events.
func (n *Notifier) MatchCompleted(ctx context.Context, match models.Match, home, away models.Team) {
	if n == nil || n.sender == nil {
		return
	}

	message := BuildResultConfirmed(ResultDetails{
		MatchDetails: MatchDetails{
			LeagueName: n.leagueName,
			HomeTeam:   home.Name,
			AwayTeam:   away.Name,
			Matchday:   match.Matchday,
			Date:       match.Date,
		},
		HomeLegs: match.HomeLegs,
		AwayLegs: match.AwayLegs,
	})

	for _, recipient := range []string{home.CaptainEmail, away.CaptainEmail} {
		n.sendAsync(ctx, recipient, message)
	}
}

func (n *Notifier) sendAsync(ctx context.Context, recipient string, message Message) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return
	}
	go func() {
		sendCtx, cancel := newSendContext(ctx)
		defer cancel()
		if err := n.sender.Send(sendCtx, recipient, message.Subject, message.Body); err != nil && n.logger != nil {
			n.logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send notification email")
		}
	}()
}

func newSendContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Detach cancellation so handler-scoped contexts don't abort async sends.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, notifyTimeout)
}
