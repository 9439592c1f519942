// internal/api/matches/handlers.go
package matches

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/api/apiutil"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/email"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/models"
	"github.com/dominikpree-ux/scolia-180-league/internal/photos"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

const (
	matchQueryTimeout = 5 * time.Second
	maxPhotoBytes     = 10 << 20
)

type Handlers struct {
	store      store.Store
	service    *league.Service
	photos     photos.Store
	sender     email.Sender
	leagueName string
}

func NewHandlers(st store.Store, service *league.Service, photoStore photos.Store, sender email.Sender, leagueName string) *Handlers {
	return &Handlers{store: st, service: service, photos: photoStore, sender: sender, leagueName: leagueName}
}

type legResultRequest struct {
	HomePlayerID   string  `json:"homePlayerId"`
	AwayPlayerID   string  `json:"awayPlayerId"`
	HomeLegs       int     `json:"homeLegs"`
	AwayLegs       int     `json:"awayLegs"`
	HomeAverage    float64 `json:"homeAverage"`
	AwayAverage    float64 `json:"awayAverage"`
	HomeHighFinish int     `json:"homeHighFinish"`
	AwayHighFinish int     `json:"awayHighFinish"`
	HomeCenturies  int     `json:"homeCenturies"`
	AwayCenturies  int     `json:"awayCenturies"`
}

type resultRequest struct {
	HomeLegs   int                `json:"homeLegs"`
	AwayLegs   int                `json:"awayLegs"`
	HomeSets   int                `json:"homeSets"`
	AwaySets   int                `json:"awaySets"`
	PhotoURL   string             `json:"photoUrl"`
	LegResults []legResultRequest `json:"legResults"`
}

func (req resultRequest) toSubmission() league.ResultSubmission {
	sub := league.ResultSubmission{
		HomeLegs: req.HomeLegs,
		AwayLegs: req.AwayLegs,
		HomeSets: req.HomeSets,
		AwaySets: req.AwaySets,
		PhotoURL: req.PhotoURL,
	}
	for _, lr := range req.LegResults {
		sub.LegResults = append(sub.LegResults, models.LegResult{
			HomePlayerID:   lr.HomePlayerID,
			AwayPlayerID:   lr.AwayPlayerID,
			HomeLegs:       lr.HomeLegs,
			AwayLegs:       lr.AwayLegs,
			HomeAverage:    lr.HomeAverage,
			AwayAverage:    lr.AwayAverage,
			HomeHighFinish: lr.HomeHighFinish,
			AwayHighFinish: lr.AwayHighFinish,
			HomeCenturies:  lr.HomeCenturies,
			AwayCenturies:  lr.AwayCenturies,
		})
	}
	return sub
}

// GET /api/v1/matches
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var filter store.MatchFilter
	if raw := r.URL.Query().Get("team_id"); raw != "" {
		filter.TeamID = &raw
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := models.ParseMatchStatus(raw)
		if !ok {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "status", Reason: "is not a valid match status"})
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("matchday"); raw != "" {
		matchday, err := strconv.Atoi(raw)
		if err != nil || matchday < 1 {
			apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "matchday", Reason: "must be a positive integer"})
			return
		}
		filter.Matchday = &matchday
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	matches, err := h.store.ListMatches(ctx, filter)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"matches": matches}); err != nil {
		logger.Error().Err(err).Msg("Failed to write matches response")
	}
}

// GET /api/v1/matches/{id}
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.store.GetMatch(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("match_id", match.ID).Msg("Failed to write match response")
	}
}

// callerTeam resolves the submitting/confirming team from the captain email
// header. The caller must captain one of the two participating teams.
func (h *Handlers) callerTeam(ctx context.Context, r *http.Request, match models.Match) (models.Team, error) {
	captainEmail := auth.CaptainEmail(r)
	if captainEmail == "" {
		return models.Team{}, league.ValidationError{Field: auth.CaptainEmailHeader, Reason: "header is required"}
	}
	for _, teamID := range []string{match.HomeTeamID, match.AwayTeamID} {
		team, err := h.store.GetTeam(ctx, teamID)
		if err != nil {
			return models.Team{}, err
		}
		if auth.OwnsTeam(team, captainEmail) {
			return team, nil
		}
	}
	return models.Team{}, league.ValidationError{Field: auth.CaptainEmailHeader, Reason: "does not captain either team in this match"}
}

// POST /api/v1/matches/{id}/result
func (h *Handlers) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.store.GetMatch(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	byTeam, err := h.callerTeam(ctx, r, match)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	submitted, err := h.service.SubmitResult(ctx, match.ID, byTeam.ID, req.toSubmission())
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().
		Str("match_id", submitted.ID).
		Str("submitted_by", byTeam.ID).
		Msg("Match result submitted")
	h.notifyConfirmationNeeded(r.Context(), submitted, byTeam)

	if err := apiutil.WriteJSON(w, http.StatusOK, submitted); err != nil {
		logger.Error().Err(err).Str("match_id", submitted.ID).Msg("Failed to write match response")
	}
}

// notifyConfirmationNeeded emails the opposing captain that a result waits
// for their confirmation. Best effort only.
func (h *Handlers) notifyConfirmationNeeded(ctx context.Context, match models.Match, submittedBy models.Team) {
	if h.sender == nil || match.NeedsConfirmationFrom == "" {
		return
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), matchQueryTimeout)
		defer cancel()

		opponent, err := h.store.GetTeam(sendCtx, match.NeedsConfirmationFrom)
		if err != nil || opponent.CaptainEmail == "" {
			return
		}
		home, err := h.store.GetTeam(sendCtx, match.HomeTeamID)
		if err != nil {
			return
		}
		away, err := h.store.GetTeam(sendCtx, match.AwayTeamID)
		if err != nil {
			return
		}

		message := email.BuildConfirmationRequest(email.ResultDetails{
			MatchDetails: email.MatchDetails{
				LeagueName: h.leagueName,
				HomeTeam:   home.Name,
				AwayTeam:   away.Name,
				Matchday:   match.Matchday,
				Date:       match.Date,
			},
			HomeLegs: match.HomeLegs,
			AwayLegs: match.AwayLegs,
		}, submittedBy.Name)
		if err := h.sender.Send(sendCtx, opponent.CaptainEmail, message.Subject, message.Body); err != nil {
			log.Error().Err(err).Str("match_id", match.ID).Msg("Failed to send confirmation request email")
		}
	}()
}

// POST /api/v1/matches/{id}/confirm
func (h *Handlers) HandleConfirmResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.store.GetMatch(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	byTeam, err := h.callerTeam(ctx, r, match)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	completed, err := h.service.ConfirmResult(ctx, match.ID, byTeam.ID)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().
		Str("match_id", completed.ID).
		Str("confirmed_by", byTeam.ID).
		Msg("Match result confirmed")
	if err := apiutil.WriteJSON(w, http.StatusOK, completed); err != nil {
		logger.Error().Err(err).Str("match_id", completed.ID).Msg("Failed to write match response")
	}
}

// POST /api/v1/matches/{id}/photo — multipart upload, returns the photo URL
// to pass along with the result submission.
func (h *Handlers) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if h.photos == nil {
		http.Error(w, "Photo uploads are not configured", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		apiutil.WriteLeagueError(w, r, league.ValidationError{Field: "photo", Reason: "file is required"})
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	url, err := h.photos.Save(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().Str("match_id", r.PathValue("id")).Str("url", url).Msg("Result photo uploaded")
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]string{"url": url}); err != nil {
		logger.Error().Err(err).Msg("Failed to write photo response")
	}
}

// POST /api/v1/matches/{id}/complete — admin override.
func (h *Handlers) HandleAdminComplete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.service.AdminCompleteMatch(ctx, r.PathValue("id"), req.toSubmission())
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().Str("match_id", match.ID).Msg("Match completed by admin")
	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to write match response")
	}
}

// PUT /api/v1/matches/{id}/result — admin edit with delta reversal.
func (h *Handlers) HandleAdminEditResult(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.service.AdminEditResult(ctx, r.PathValue("id"), req.toSubmission())
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}

	logger.Info().Str("match_id", match.ID).Msg("Match result edited by admin")
	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		logger.Error().Err(err).Str("match_id", match.ID).Msg("Failed to write match response")
	}
}

// POST /api/v1/matches/{id}/cancel — admin.
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := h.service.CancelMatch(ctx, r.PathValue("id"))
	if err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, match); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("match_id", match.ID).Msg("Failed to write match response")
	}
}

// DELETE /api/v1/matches/{id} — admin, reversing standings if needed.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	if err := h.service.DeleteMatch(ctx, r.PathValue("id")); err != nil {
		apiutil.WriteLeagueError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
