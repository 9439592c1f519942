package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/email"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const reminderJobTimeout = 2 * time.Minute

// RegisterReminderJob schedules the daily captain reminder: every scheduled
// match playing tomorrow gets one email to each captain. Send failures are
// logged per recipient and never abort the run.
func RegisterReminderJob(svc *Service, st store.Store, sender email.Sender, leagueName, cronExpr string) error {
	if svc == nil || st == nil {
		return fmt.Errorf("reminder job requires scheduler and store")
	}

	jobName := "match_reminders"
	jobLogger := log.With().
		Str("component", "match_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := svc.AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if sender == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email sender not configured")
			return
		}
		runReminderPass(ctx, st, sender, leagueName, &jobLogger)
	})
	return err
}

func runReminderPass(ctx context.Context, st store.Store, sender email.Sender, leagueName string, logger *zerolog.Logger) {
	now := time.Now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	status := models.MatchScheduled
	matches, err := st.ListMatches(ctx, store.MatchFilter{
		Status:   &status,
		DateFrom: &tomorrow,
		DateTo:   &dayAfter,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load matches for reminder job")
		return
	}

	for _, match := range matches {
		home, err := st.GetTeam(ctx, match.HomeTeamID)
		if err != nil {
			logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to load home team for reminder")
			continue
		}
		away, err := st.GetTeam(ctx, match.AwayTeamID)
		if err != nil {
			logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to load away team for reminder")
			continue
		}

		message := email.BuildMatchReminder(email.MatchDetails{
			LeagueName: leagueName,
			HomeTeam:   home.Name,
			AwayTeam:   away.Name,
			Matchday:   match.Matchday,
			Date:       match.Date,
		})

		for _, recipient := range []string{home.CaptainEmail, away.CaptainEmail} {
			recipient = strings.TrimSpace(recipient)
			if recipient == "" {
				continue
			}
			if err := sender.Send(ctx, recipient, message.Subject, message.Body); err != nil {
				logger.Error().Err(err).
					Str("match_id", match.ID).
					Str("recipient", recipient).
					Msg("Failed to send match reminder")
			}
		}
	}
}
