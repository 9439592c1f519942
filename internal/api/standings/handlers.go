// internal/api/standings/handlers.go
package standings

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

type Handlers struct {
	store store.Store
}

func NewHandlers(st store.Store) *Handlers {
	return &Handlers{store: st}
}

// GET /api/v1/standings?tier=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	filter := store.TeamFilter{}
	approved := models.TeamApproved
	filter.Status = &approved
	if raw := r.URL.Query().Get("tier"); raw != "" {
		tier, ok := models.ParseLeagueTier(raw)
		if !ok {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "tier", Reason: "is not a valid league tier"})
			return
		}
		filter.Tier = &tier
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	teams, err := h.store.ListTeams(ctx, filter)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	table := league.ComputeStandings(teams)
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": table}); err != nil {
		logger.Error().Err(err).Msg("Failed to write standings response")
	}
}
