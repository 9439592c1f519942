// internal/api/players/handlers.go
package players

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/apiutil"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const playerQueryTimeout = 5 * time.Second

type Handlers struct {
	store store.Store
	admin *auth.Admin
}

func NewHandlers(st store.Store, admin *auth.Admin) *Handlers {
	return &Handlers{store: st, admin: admin}
}

type playerRequest struct {
	Name                  string `json:"name"`
	TeamID                string `json:"teamId"`
	IsCaptain             bool   `json:"isCaptain"`
	LookingForTeam        bool   `json:"lookingForTeam"`
	AvailableAsSubstitute bool   `json:"availableAsSubstitute"`
}

type updateRequest struct {
	Name                  *string `json:"name"`
	TeamID                *string `json:"teamId"`
	IsCaptain             *bool   `json:"isCaptain"`
	LookingForTeam        *bool   `json:"lookingForTeam"`
	AvailableAsSubstitute *bool   `json:"availableAsSubstitute"`
}

// POST /api/v1/players
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req playerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "name", Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	teamID := strings.TrimSpace(req.TeamID)
	if teamID != "" {
		if _, err := h.store.GetTeam(ctx, teamID); err != nil {
			apiutil.WriteLeagueError(w, r, err)
			return
		}
	}

	created, err := h.store.CreatePlayer(ctx, models.Player{
		Name:                  name,
		TeamID:                teamID,
		IsCaptain:             req.IsCaptain,
		LookingForTeam:        req.LookingForTeam,
		AvailableAsSubstitute: req.AvailableAsSubstitute,
	})
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().Str("player_id", created.ID).Msg("Player registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("player_id", created.ID).Msg("Failed to write player response")
	}
}

// GET /api/v1/players
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var filter store.PlayerFilter
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		filter.TeamID = &raw
	}
	if raw := r.URL.Query().Get("looking_for_team"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "looking_for_team", Reason: "must be true or false"})
			return
		}
		filter.LookingForTeam = &value
	}
	if raw := r.URL.Query().Get("available_as_substitute"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "available_as_substitute", Reason: "must be true or false"})
			return
		}
		filter.AvailableAsSubstitute = &value
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	players, err := h.store.ListPlayers(ctx, filter)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"players": players}); err != nil {
		logger.Error().Err(err).Msg("Failed to write players response")
	}
}

// canEdit reports whether the caller may modify the player: the admin
// always can, a captain only for players on their own team. Unattached
// players are admin-managed.
func (h *Handlers) canEdit(ctx context.Context, r *http.Request, player models.Player) bool {
	if h.admin.Check(r.Header.Get(auth.AdminKeyHeader)) {
		return true
	}
	if player.TeamID == "" {
		return false
	}
	team, err := h.store.GetTeam(ctx, player.TeamID)
	if err != nil {
		return false
	}
	return auth.OwnsTeam(team, auth.CaptainEmail(r))
}

// PATCH /api/v1/players/{id} — captain of the player's team or admin.
// Omitted fields are left untouched.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req updateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	player, err := h.store.GetPlayer(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if !h.canEdit(ctx, r, player) {
		logger.Warn().Str("player_id", player.ID).Msg("Player update denied")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "name", Reason: "is required"})
			return
		}
		player.Name = name
	}
	if req.TeamID != nil {
		teamID := strings.TrimSpace(*req.TeamID)
		if teamID != "" && teamID != player.TeamID {
			if _, err := h.store.GetTeam(ctx, teamID); err != nil {
				apiutil.WriteLeagueError(w, r, err)
				return
			}
		}
		player.TeamID = teamID
	}
	if req.IsCaptain != nil {
		player.IsCaptain = *req.IsCaptain
	}
	if req.LookingForTeam != nil {
		player.LookingForTeam = *req.LookingForTeam
	}
	if req.AvailableAsSubstitute != nil {
		player.AvailableAsSubstitute = *req.AvailableAsSubstitute
	}

	if err := h.store.UpdatePlayer(ctx, player); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Str("player_id", player.ID).Msg("Failed to write player response")
	}
}

// DELETE /api/v1/players/{id} — admin.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	if err := h.store.DeletePlayer(ctx, r.PathValue("id")); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/players/{id}/stats
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	playerID := r.PathValue("id")
	if _, err := h.store.GetPlayer(ctx, playerID); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	stats, err := h.store.GetPlayerStats(ctx, playerID)
	if err != nil {
		// A player without recorded results has all-zero stats.
		if errors.Is(err, league.ErrNotFound) {
			stats = models.PlayerStats{PlayerID: playerID}
		} else {
			apiutil.WriteLeagueError(w, r, err)
			return
		}
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, stats); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("player_id", playerID).Msg("Failed to write stats response")
	}
}

// GET /api/v1/stats
func (h *Handlers) HandleStatsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), playerQueryTimeout)
	defer cancel()

	stats, err := h.store.ListPlayerStats(ctx)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"stats": stats}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write stats response")
	}
}
