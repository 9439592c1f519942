// Package auth holds the two access checks the league needs: an admin key
// for moderation endpoints and captain-email ownership for team edits.
package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dominikpree-ux/scolia-180-league/internal/models"
)

const (
	AdminKeyHeader     = "X-Admin-Key"
	CaptainEmailHeader = "X-Captain-Email"
)

// Admin verifies the shared admin key against its bcrypt hash.
type Admin struct {
	keyHash string
}

func NewAdmin(keyHash string) *Admin {
	return &Admin{keyHash: keyHash}
}

// Check reports whether the presented key matches the configured hash.
// An unconfigured hash rejects everything.
func (a *Admin) Check(key string) bool {
	if a == nil || a.keyHash == "" || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.keyHash), []byte(key)) == nil
}

// Require wraps moderation handlers with the admin key check.
func (a *Admin) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Check(r.Header.Get(AdminKeyHeader)) {
			log.Ctx(r.Context()).Warn().
				Str("path", r.URL.Path).
				Msg("Admin access denied")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// CaptainEmail extracts the caller's captain identity from the request.
func CaptainEmail(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(CaptainEmailHeader))
}

// OwnsTeam reports whether the given captain email owns the team.
func OwnsTeam(team models.Team, captainEmail string) bool {
	if captainEmail == "" {
		return false
	}
	return strings.EqualFold(team.CaptainEmail, captainEmail)
}
