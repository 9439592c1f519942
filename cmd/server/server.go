// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dominikpree-ux/scolia-180-league/internal/api"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/auth"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/matches"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/players"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/schedule"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/standings"
	"github.com/dominikpree-ux/scolia-180-league/internal/api/teams"
	"github.com/dominikpree-ux/scolia-180-league/internal/config"
	"github.com/dominikpree-ux/scolia-180-league/internal/email"
	"github.com/dominikpree-ux/scolia-180-league/internal/league"
	"github.com/dominikpree-ux/scolia-180-league/internal/photos"
	"github.com/dominikpree-ux/scolia-180-league/internal/ratelimit"
	"github.com/dominikpree-ux/scolia-180-league/internal/store"
)

func newServer(cfg *config.Config, st store.Store, service *league.Service, photoStore photos.Store, sender email.Sender) *http.Server {
	router := http.NewServeMux()

	limiter := ratelimit.New(nil)

	handler := api.ChainMiddleware(
		router,
		api.WithRateLimit(limiter, cfg.App.TrustProxy),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	registerRoutes(router, cfg, st, service, photoStore, sender)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, st store.Store, service *league.Service, photoStore photos.Store, sender email.Sender) {
	admin := auth.NewAdmin(cfg.App.AdminKeyHash)

	teamHandlers := teams.NewHandlers(st, admin, sender, cfg.App.Name)
	playerHandlers := players.NewHandlers(st, admin)
	matchHandlers := matches.NewHandlers(st, service, photoStore, sender, cfg.App.Name)
	scheduleHandlers := schedule.NewHandlers(st)
	standingsHandlers := standings.NewHandlers(st)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Team routes
	mux.HandleFunc("POST /api/v1/teams", teamHandlers.HandleRegister)
	mux.HandleFunc("GET /api/v1/teams", teamHandlers.HandleList)
	mux.HandleFunc("GET /api/v1/teams/{id}", teamHandlers.HandleDetail)
	mux.HandleFunc("PATCH /api/v1/teams/{id}", teamHandlers.HandleUpdate)
	mux.HandleFunc("POST /api/v1/teams/{id}/approve", admin.Require(teamHandlers.HandleApprove))
	mux.HandleFunc("POST /api/v1/teams/{id}/reject", admin.Require(teamHandlers.HandleReject))
	mux.HandleFunc("DELETE /api/v1/teams/{id}", admin.Require(teamHandlers.HandleDelete))

	// Player routes
	mux.HandleFunc("POST /api/v1/players", playerHandlers.HandleRegister)
	mux.HandleFunc("GET /api/v1/players", playerHandlers.HandleList)
	mux.HandleFunc("PATCH /api/v1/players/{id}", playerHandlers.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/players/{id}", admin.Require(playerHandlers.HandleDelete))
	mux.HandleFunc("GET /api/v1/players/{id}/stats", playerHandlers.HandleStats)
	mux.HandleFunc("GET /api/v1/stats", playerHandlers.HandleStatsList)

	// Match routes
	mux.HandleFunc("GET /api/v1/matches", matchHandlers.HandleList)
	mux.HandleFunc("GET /api/v1/matches/{id}", matchHandlers.HandleDetail)
	mux.HandleFunc("POST /api/v1/matches/{id}/result", matchHandlers.HandleSubmitResult)
	mux.HandleFunc("POST /api/v1/matches/{id}/confirm", matchHandlers.HandleConfirmResult)
	mux.HandleFunc("POST /api/v1/matches/{id}/photo", matchHandlers.HandleUploadPhoto)
	mux.HandleFunc("POST /api/v1/matches/{id}/complete", admin.Require(matchHandlers.HandleAdminComplete))
	mux.HandleFunc("PUT /api/v1/matches/{id}/result", admin.Require(matchHandlers.HandleAdminEditResult))
	mux.HandleFunc("POST /api/v1/matches/{id}/cancel", admin.Require(matchHandlers.HandleCancel))
	mux.HandleFunc("DELETE /api/v1/matches/{id}", admin.Require(matchHandlers.HandleDelete))

	// Schedule and standings
	mux.HandleFunc("POST /api/v1/schedule", admin.Require(scheduleHandlers.HandleGenerate))
	mux.HandleFunc("GET /api/v1/standings", standingsHandlers.HandleList)

	// Serve locally stored result photos
	if local, ok := photoStore.(*photos.LocalStore); ok {
		fs := http.FileServer(http.Dir(local.Dir()))
		mux.Handle("GET /photos/", http.StripPrefix("/photos/", fs))
	}
}
