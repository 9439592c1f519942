package league

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

// maxCheckout is the highest finish reachable in a single visit.
const maxCheckout = 170

// ResultSubmission carries a captain's reported scores for a match. Legs
// decide the outcome; sets are kept for the standings counters. LegResults
// is the optional detailed path feeding per-player statistics.
type ResultSubmission struct {
	HomeLegs int
	AwayLegs int
	HomeSets int
	AwaySets int
	PhotoURL string

	LegResults []models.LegResult
}

// Service drives a match through submission, confirmation, and the
// exactly-once standings update. All state lives behind the injected Store.
type Service struct {
	store  Store
	events Events
}

func NewService(store Store, events Events) *Service {
	if events == nil {
		events = NopEvents{}
	}
	return &Service{store: store, events: events}
}

// SubmitResult moves a scheduled match to result_submitted on behalf of one
// of its two teams. The opposing team becomes responsible for confirmation.
// Standings are untouched until then.
func (s *Service) SubmitResult(ctx context.Context, matchID, byTeamID string, sub ResultSubmission) (models.Match, error) {
	if err := validateSubmission(sub); err != nil {
		return models.Match{}, err
	}
	if strings.TrimSpace(byTeamID) == "" {
		return models.Match{}, ValidationError{Field: "team_id", Reason: "is required"}
	}

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if !match.Involves(byTeamID) {
		return models.Match{}, ValidationError{Field: "team_id", Reason: "is not a participant in this match"}
	}
	if match.Status != models.MatchScheduled {
		return models.Match{}, fmt.Errorf("%w: cannot submit a result for a %s match", ErrInvalidTransition, match.Status)
	}
	if err := s.validateLegResults(ctx, match, sub.LegResults); err != nil {
		return models.Match{}, err
	}

	match.HomeLegs = sub.HomeLegs
	match.AwayLegs = sub.AwayLegs
	match.HomeSets = sub.HomeSets
	match.AwaySets = sub.AwaySets
	match.ResultPhotoURL = sub.PhotoURL
	match.SubmittedByTeamID = byTeamID
	match.NeedsConfirmationFrom = match.Opponent(byTeamID)
	match.Status = models.MatchResultSubmitted
	match.UpdatedAt = time.Now().UTC()

	err = s.store.RunInTx(ctx, func(tx Store) error {
		if err := tx.UpdateMatchIfStatus(ctx, match, models.MatchScheduled); err != nil {
			return err
		}
		if len(sub.LegResults) > 0 {
			return tx.ReplaceLegResults(ctx, match.ID, sub.LegResults)
		}
		return nil
	})
	if err != nil {
		return models.Match{}, err
	}
	return match, nil
}

// ConfirmResult completes a result_submitted match. Only the team named in
// needs_confirmation_from may confirm, so a team can never confirm its own
// submission. The match row, both team rows, and any player statistics are
// written in one transaction; the conditional status update guards against
// a racing second confirmation.
func (s *Service) ConfirmResult(ctx context.Context, matchID, byTeamID string) (models.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if match.Status != models.MatchResultSubmitted {
		return models.Match{}, fmt.Errorf("%w: cannot confirm a %s match", ErrInvalidTransition, match.Status)
	}
	if byTeamID != match.NeedsConfirmationFrom {
		return models.Match{}, fmt.Errorf("%w: only the opposing team may confirm this result", ErrInvalidTransition)
	}

	completed := match
	completed.Status = models.MatchCompleted
	completed.ResultConfirmed = true
	completed.NeedsConfirmationFrom = ""
	completed.UpdatedAt = time.Now().UTC()

	var home, away models.Team
	err = s.store.RunInTx(ctx, func(tx Store) error {
		if err := tx.UpdateMatchIfStatus(ctx, completed, models.MatchResultSubmitted); err != nil {
			return err
		}
		home, away, err = applyMatchToTeams(ctx, tx, completed)
		if err != nil {
			return err
		}
		return applyStoredLegResults(ctx, tx, completed.ID)
	})
	if err != nil {
		return models.Match{}, err
	}

	s.events.MatchCompleted(ctx, completed, home, away)
	return completed, nil
}

// AdminCompleteMatch records scores and completes a match in one step,
// bypassing the two-party handshake. The standings effect is identical to a
// confirmed result and is applied exactly once.
func (s *Service) AdminCompleteMatch(ctx context.Context, matchID string, sub ResultSubmission) (models.Match, error) {
	if err := validateScores(sub); err != nil {
		return models.Match{}, err
	}

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if match.Status != models.MatchScheduled && match.Status != models.MatchResultSubmitted {
		return models.Match{}, fmt.Errorf("%w: cannot complete a %s match", ErrInvalidTransition, match.Status)
	}
	previous := match.Status
	if err := s.validateLegResults(ctx, match, sub.LegResults); err != nil {
		return models.Match{}, err
	}

	match.HomeLegs = sub.HomeLegs
	match.AwayLegs = sub.AwayLegs
	match.HomeSets = sub.HomeSets
	match.AwaySets = sub.AwaySets
	if sub.PhotoURL != "" {
		match.ResultPhotoURL = sub.PhotoURL
	}
	match.Status = models.MatchCompleted
	match.ResultConfirmed = true
	match.NeedsConfirmationFrom = ""
	match.UpdatedAt = time.Now().UTC()

	var home, away models.Team
	err = s.store.RunInTx(ctx, func(tx Store) error {
		if err := tx.UpdateMatchIfStatus(ctx, match, previous); err != nil {
			return err
		}
		if len(sub.LegResults) > 0 {
			if err := tx.ReplaceLegResults(ctx, match.ID, sub.LegResults); err != nil {
				return err
			}
		}
		home, away, err = applyMatchToTeams(ctx, tx, match)
		if err != nil {
			return err
		}
		return applyStoredLegResults(ctx, tx, match.ID)
	})
	if err != nil {
		return models.Match{}, err
	}

	s.events.MatchCompleted(ctx, match, home, away)
	return match, nil
}

// AdminEditResult changes the scores of a completed match. The match is
// re-read inside the transaction so the reversal always subtracts the deltas
// that are actually committed, even when a confirm or another edit landed
// after the admin loaded the match. Per-leg results are immutable once a
// match completes; edits carrying them are rejected.
func (s *Service) AdminEditResult(ctx context.Context, matchID string, sub ResultSubmission) (models.Match, error) {
	if err := validateScores(sub); err != nil {
		return models.Match{}, err
	}
	if len(sub.LegResults) > 0 {
		return models.Match{}, ValidationError{Field: "leg_results", Reason: "cannot be changed on a completed match"}
	}

	var edited models.Match
	err := s.store.RunInTx(ctx, func(tx Store) error {
		match, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if match.Status != models.MatchCompleted {
			return fmt.Errorf("%w: can only edit the result of a completed match", ErrInvalidTransition)
		}

		edited = match
		edited.HomeLegs = sub.HomeLegs
		edited.AwayLegs = sub.AwayLegs
		edited.HomeSets = sub.HomeSets
		edited.AwaySets = sub.AwaySets
		if sub.PhotoURL != "" {
			edited.ResultPhotoURL = sub.PhotoURL
		}
		edited.UpdatedAt = time.Now().UTC()

		if err := reverseMatchFromTeams(ctx, tx, match); err != nil {
			return err
		}
		if _, _, err := applyMatchToTeams(ctx, tx, edited); err != nil {
			return err
		}
		return tx.UpdateMatchIfStatus(ctx, edited, models.MatchCompleted)
	})
	if err != nil {
		return models.Match{}, err
	}
	return edited, nil
}

// DeleteMatch removes a match. A completed match has its standings effect
// reversed first so both team invariants keep holding. The status that
// decides the reversal is read inside the transaction: a delete racing a
// confirmation either sees the completed match and reverses it, or deletes
// before the confirmation's conditional update can land.
func (s *Service) DeleteMatch(ctx context.Context, matchID string) error {
	return s.store.RunInTx(ctx, func(tx Store) error {
		match, err := tx.GetMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if match.Status == models.MatchCompleted {
			if err := reverseMatchFromTeams(ctx, tx, match); err != nil {
				return err
			}
		}
		if err := tx.DeleteLegResults(ctx, match.ID); err != nil {
			return err
		}
		return tx.DeleteMatch(ctx, match.ID)
	})
}

// CancelMatch moves a scheduled or result_submitted match to its terminal
// cancelled state. Nothing ever reached the standings, so nothing reverses.
func (s *Service) CancelMatch(ctx context.Context, matchID string) (models.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if match.Status != models.MatchScheduled && match.Status != models.MatchResultSubmitted {
		return models.Match{}, fmt.Errorf("%w: cannot cancel a %s match", ErrInvalidTransition, match.Status)
	}
	previous := match.Status

	match.Status = models.MatchCancelled
	match.NeedsConfirmationFrom = ""
	match.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateMatchIfStatus(ctx, match, previous); err != nil {
		return models.Match{}, err
	}
	return match, nil
}

func applyMatchToTeams(ctx context.Context, tx Store, match models.Match) (models.Team, models.Team, error) {
	home, err := tx.GetTeam(ctx, match.HomeTeamID)
	if err != nil {
		return models.Team{}, models.Team{}, err
	}
	away, err := tx.GetTeam(ctx, match.AwayTeamID)
	if err != nil {
		return models.Team{}, models.Team{}, err
	}

	homeDelta, awayDelta := matchDeltas(match)
	applyDelta(&home, homeDelta)
	applyDelta(&away, awayDelta)

	if err := tx.UpdateTeam(ctx, home); err != nil {
		return models.Team{}, models.Team{}, err
	}
	if err := tx.UpdateTeam(ctx, away); err != nil {
		return models.Team{}, models.Team{}, err
	}
	return home, away, nil
}

func reverseMatchFromTeams(ctx context.Context, tx Store, match models.Match) error {
	home, err := tx.GetTeam(ctx, match.HomeTeamID)
	if err != nil {
		return err
	}
	away, err := tx.GetTeam(ctx, match.AwayTeamID)
	if err != nil {
		return err
	}

	homeDelta, awayDelta := matchDeltas(match)
	reverseDelta(&home, homeDelta)
	reverseDelta(&away, awayDelta)

	if err := tx.UpdateTeam(ctx, home); err != nil {
		return err
	}
	return tx.UpdateTeam(ctx, away)
}

func validateSubmission(sub ResultSubmission) error {
	if strings.TrimSpace(sub.PhotoURL) == "" {
		return ValidationError{Field: "result_photo_url", Reason: "is required"}
	}
	return validateScores(sub)
}

func validateScores(sub ResultSubmission) error {
	if sub.HomeLegs < 0 || sub.AwayLegs < 0 {
		return ValidationError{Field: "legs", Reason: "must be non-negative"}
	}
	if sub.HomeLegs == 0 && sub.AwayLegs == 0 {
		return ValidationError{Field: "legs", Reason: "must not both be zero"}
	}
	if sub.HomeSets < 0 || sub.AwaySets < 0 {
		return ValidationError{Field: "sets", Reason: "must be non-negative"}
	}
	return nil
}

func (s *Service) validateLegResults(ctx context.Context, match models.Match, results []models.LegResult) error {
	for i, result := range results {
		if result.HomePlayerID == "" || result.AwayPlayerID == "" {
			return ValidationError{Field: fmt.Sprintf("leg_results[%d]", i), Reason: "requires both player ids"}
		}
		if result.HomePlayerID == result.AwayPlayerID {
			return ValidationError{Field: fmt.Sprintf("leg_results[%d]", i), Reason: "players must differ"}
		}
		if result.HomeLegs < 0 || result.AwayLegs < 0 {
			return ValidationError{Field: fmt.Sprintf("leg_results[%d].legs", i), Reason: "must be non-negative"}
		}
		if result.HomeHighFinish < 0 || result.HomeHighFinish > maxCheckout ||
			result.AwayHighFinish < 0 || result.AwayHighFinish > maxCheckout {
			return ValidationError{Field: fmt.Sprintf("leg_results[%d].high_finish", i), Reason: fmt.Sprintf("must be between 0 and %d", maxCheckout)}
		}
		if result.HomeCenturies < 0 || result.AwayCenturies < 0 {
			return ValidationError{Field: fmt.Sprintf("leg_results[%d].centuries", i), Reason: "must be non-negative"}
		}
		for _, playerID := range []string{result.HomePlayerID, result.AwayPlayerID} {
			if _, err := s.store.GetPlayer(ctx, playerID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return fmt.Errorf("%w: player %s", ErrNotFound, playerID)
				}
				return err
			}
		}
		results[i].MatchID = match.ID
	}
	return nil
}
