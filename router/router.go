// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/encore-vote/cliparse"
	"github.com/danielhkuo/encore-vote/engine"
	"github.com/danielhkuo/encore-vote/handlers"
	"github.com/danielhkuo/encore-vote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, eng *engine.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(db, cfg, eng)
	participationHandler := handlers.NewParticipationHandler(cfg, eng)
	voteHandler := handlers.NewVoteHandler(cfg, eng)
	leaderboardHandler := handlers.NewLeaderboardHandler(cfg, eng)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Event lifecycle (host operations)
	mux.HandleFunc("POST /events", middleware.WithLogging(eventHandler.CreateEvent))
	mux.HandleFunc("GET /events/{id}/admin", middleware.WithLogging(eventHandler.GetEventAdmin))
	mux.HandleFunc("PATCH /events/{id}", middleware.WithLogging(eventHandler.UpdateEvent))
	mux.HandleFunc("POST /events/{id}/options", middleware.WithLogging(eventHandler.AddOption))
	mux.HandleFunc("DELETE /events/{id}/options/{optionID}", middleware.WithLogging(eventHandler.RemoveOption))
	mux.HandleFunc("POST /events/{id}/options/{optionID}/deactivate", middleware.WithLogging(eventHandler.DeactivateOption))
	mux.HandleFunc("POST /events/{id}/publish", middleware.WithLogging(eventHandler.PublishEvent))
	mux.HandleFunc("POST /events/{id}/open", middleware.WithLogging(eventHandler.OpenVoting))
	mux.HandleFunc("POST /events/{id}/close", middleware.WithLogging(eventHandler.CloseVoting))
	mux.HandleFunc("POST /events/{id}/reveal", middleware.WithLogging(eventHandler.RevealResults))
	mux.HandleFunc("POST /events/{id}/cancel", middleware.WithLogging(eventHandler.CancelEvent))
	mux.HandleFunc("POST /events/{id}/archive", middleware.WithLogging(eventHandler.ArchiveEvent))
	mux.HandleFunc("GET /events/{id}/reconcile", middleware.WithLogging(eventHandler.ReconcileEvent))

	// Participation (public, via join code)
	mux.HandleFunc("POST /join/{code}", middleware.WithLogging(participationHandler.Join))
	mux.HandleFunc("GET /join/{code}", middleware.WithLogging(participationHandler.GetEvent))
	mux.HandleFunc("GET /join/{code}/participants/{participantID}", middleware.WithLogging(participationHandler.GetParticipant))

	// Voting and leaderboard (public)
	mux.HandleFunc("POST /join/{code}/votes", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /join/{code}/leaderboard", middleware.WithLogging(leaderboardHandler.GetLeaderboard))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("encore-vote API v1"))
	})

	return mux
}
