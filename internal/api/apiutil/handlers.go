package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dominikpree-ux/scolia-180-league/internal/league"
)

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteLeagueError maps the league error taxonomy onto HTTP statuses.
// Validation failures carry the offending field; anything unrecognized is a
// 500 and gets logged with its request context.
func WriteLeagueError(w http.ResponseWriter, r *http.Request, err error) {
	var ve league.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, league.ErrInsufficientTeams):
		writeError(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, league.ErrNotFound):
		writeError(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, league.ErrInvalidTransition), errors.Is(err, league.ErrConflict):
		writeError(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}

func writeError(w http.ResponseWriter, status int, body errorBody) {
	if err := WriteJSON(w, status, body); err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}
