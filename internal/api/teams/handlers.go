// internal/api/teams/handlers.go
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/apiutil"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/email"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const (
	teamQueryTimeout   = 5 * time.Second
	defaultPhoneRegion = "DE"
)

type Handlers struct {
	store      store.Store
	admin      *auth.Admin
	sender     email.Sender
	leagueName string
}

func NewHandlers(st store.Store, admin *auth.Admin, sender email.Sender, leagueName string) *Handlers {
	return &Handlers{store: st, admin: admin, sender: sender, leagueName: leagueName}
}

type registerRequest struct {
	Name         string `json:"name"`
	CaptainName  string `json:"captainName"`
	CaptainEmail string `json:"captainEmail"`
	CaptainPhone string `json:"captainPhone"`
	Tier         string `json:"tier"`
}

type updateRequest struct {
	Name         *string `json:"name"`
	CaptainName  *string `json:"captainName"`
	CaptainPhone *string `json:"captainPhone"`
}

type moderateRequest struct {
	Tier string `json:"tier"`
}

// POST /api/v1/teams
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req registerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	team, err := h.buildTeam(req)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if _, err := h.store.GetTeamByName(ctx, team.Name); err == nil {
		apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "name", Reason: "is already registered"})
		return
	} else if !errors.Is(err, league.ErrNotFound) {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	created, err := h.store.CreateTeam(ctx, team)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().Str("team_id", created.ID).Str("team_name", created.Name).Msg("Team registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("team_id", created.ID).Msg("Failed to write team response")
	}
}

func (h *Handlers) buildTeam(req registerRequest) (models.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Team{}, league.ValidationError{Field: "name", Reason: "is required"}
	}
	captainName := strings.TrimSpace(req.CaptainName)
	if captainName == "" {
		return models.Team{}, league.ValidationError{Field: "captainName", Reason: "is required"}
	}
	captainEmail := strings.TrimSpace(req.CaptainEmail)
	if captainEmail == "" || !strings.Contains(captainEmail, "@") {
		return models.Team{}, league.ValidationError{Field: "captainEmail", Reason: "must be a valid email address"}
	}

	phone := strings.TrimSpace(req.CaptainPhone)
	if phone != "" {
		parsed, err := phonenumbers.Parse(phone, defaultPhoneRegion)
		if err != nil || !phonenumbers.IsValidNumber(parsed) {
			return models.Team{}, league.ValidationError{Field: "captainPhone", Reason: "must be a valid phone number"}
		}
		phone = phonenumbers.Format(parsed, phonenumbers.E164)
	}

	tier := models.TierC
	if strings.TrimSpace(req.Tier) != "" {
		parsed, ok := models.ParseLeagueTier(req.Tier)
		if !ok {
			return models.Team{}, league.ValidationError{Field: "tier", Reason: "must be A, B, or C"}
		}
		tier = parsed
	}

	return models.Team{
		Name:         name,
		CaptainName:  captainName,
		CaptainEmail: captainEmail,
		CaptainPhone: phone,
		Status:       models.TeamPending,
		Tier:         tier,
	}, nil
}

// GET /api/v1/teams
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var filter store.TeamFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := models.ParseTeamStatus(raw)
		if !ok {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "status", Reason: "is not a valid team status"})
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("tier"); raw != "" {
		tier, ok := models.ParseLeagueTier(raw)
		if !ok {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "tier", Reason: "must be A, B, or C"})
			return
		}
		filter.Tier = &tier
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	teams, err := h.store.ListTeams(ctx, filter)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"teams": teams}); err != nil {
		logger.Error().Err(err).Msg("Failed to write teams response")
	}
}

// GET /api/v1/teams/{id}
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := h.store.GetTeam(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("team_id", team.ID).Msg("Failed to write team response")
	}
}

// PATCH /api/v1/teams/{id} — captain-owned fields only.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req updateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := h.store.GetTeam(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	isAdmin := h.admin.Check(r.Header.Get(auth.AdminKeyHeader))
	if !isAdmin && !auth.OwnsTeam(team, auth.CaptainEmail(r)) {
		logger.Warn().Str("team_id", team.ID).Msg("Team update denied")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "name", Reason: "is required"})
			return
		}
		team.Name = name
	}
	if req.CaptainName != nil {
		team.CaptainName = strings.TrimSpace(*req.CaptainName)
	}
	if req.CaptainPhone != nil {
		phone := strings.TrimSpace(*req.CaptainPhone)
		if phone != "" {
			parsed, err := phonenumbers.Parse(phone, defaultPhoneRegion)
			if err != nil || !phonenumbers.IsValidNumber(parsed) {
				apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "captainPhone", Reason: "must be a valid phone number"})
				return
			}
			phone = phonenumbers.Format(parsed, phonenumbers.E164)
		}
		team.CaptainPhone = phone
	}

	if err := h.store.UpdateTeam(ctx, team); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Str("team_id", team.ID).Msg("Failed to write team response")
	}
}

// POST /api/v1/teams/{id}/approve — admin.
func (h *Handlers) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.TeamApproved)
}

// POST /api/v1/teams/{id}/reject — admin.
func (h *Handlers) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, models.TeamRejected)
}

func (h *Handlers) moderate(w http.ResponseWriter, r *http.Request, status models.TeamStatus) {
	logger := log.Ctx(r.Context())

	var req moderateRequest
	if r.ContentLength > 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	team, err := h.store.GetTeam(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	team.Status = status
	if req.Tier != "" {
		tier, ok := models.ParseLeagueTier(req.Tier)
		if !ok {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "tier", Reason: "must be A, B, or C"})
			return
		}
		team.Tier = tier
	}

	if err := h.store.UpdateTeam(ctx, team); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	logger.Info().Str("team_id", team.ID).Str("status", string(status)).Msg("Team moderated")

	if status == models.TeamApproved {
		h.sendApprovalEmail(r.Context(), team)
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, team); err != nil {
		logger.Error().Err(err).Str("team_id", team.ID).Msg("Failed to write team response")
	}
}

func (h *Handlers) sendApprovalEmail(ctx context.Context, team models.Team) {
	if h.sender == nil || team.CaptainEmail == "" {
		return
	}
	message := email.BuildTeamApproved(team.Name, string(team.Tier))
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), teamQueryTimeout)
		defer cancel()
		if err := h.sender.Send(sendCtx, team.CaptainEmail, message.Subject, message.Body); err != nil {
			log.Error().Err(err).Str("team_id", team.ID).Msg("Failed to send approval email")
		}
	}()
}

// DELETE /api/v1/teams/{id} — admin.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), teamQueryTimeout)
	defer cancel()

	if err := h.store.DeleteTeam(ctx, r.PathValue("id")); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
