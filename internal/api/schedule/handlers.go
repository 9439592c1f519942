// internal/api/schedule/handlers.go
package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/apiutil"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const scheduleTimeout = 15 * time.Second

type Handlers struct {
	store store.Store
}

func NewHandlers(st store.Store) *Handlers {
	return &Handlers{store: st}
}

type generateRequest struct {
	Tier      string `json:"tier"`
	StartDate string `json:"startDate"`
}

// POST /api/v1/schedule — admin. Generates a double round-robin for all
// approved teams in the given tier and persists the fixtures.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req generateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tier, ok := models.ParseLeagueTier(req.Tier)
	if !ok {
		apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "tier", Reason: "is not a valid league tier"})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "startDate", Reason: "must be a date in YYYY-MM-DD format"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleTimeout)
	defer cancel()

	approved := models.TeamApproved
	teams, err := h.store.ListTeams(ctx, store.TeamFilter{Status: &approved, Tier: &tier})
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	matches, err := league.GenerateSchedule(teams, startDate)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	created, err := h.store.CreateMatches(ctx, matches)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().
		Str("tier", string(tier)).
		Int("teams", len(teams)).
		Int("matches", len(created)).
		Msg("Schedule generated")
	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{"matches": created}); err != nil {
		logger.Error().Err(err).Msg("Failed to write schedule response")
	}
}
