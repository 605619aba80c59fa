package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health and metrics
	r.Get("/healthz", h.handleHealthz)
	if h.metricsHandler != nil {
		r.Handle("/metrics", h.metricsHandler)
	}

	// WebSocket change feed
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	// Scoreboard (public)
	r.Get("/api/leaderboard", h.handleGetLeaderboard)
	r.Get("/api/leaderboard/qr", h.handleLeaderboardQR)
	r.Get("/api/leaderboard/freeze", h.handleGetFreezeState)
	r.Get("/api/groups", h.handleGetGroups)
	r.Get("/api/groups/{id}/points", h.handleGetGroupPoints)
	r.Get("/api/activities", h.handleGetActivities)

	// Time entry (public, station leaders submit from their phones)
	r.Post("/api/activities/{id}/times", h.handleSubmitTime)
	r.Get("/api/activities/{id}/times", h.handleGetActivityTimes)
	r.Get("/api/activities/{id}/complete", h.handleCheckCompletion)

	// Auth routes (public)
	r.Post("/api/admin/login", h.handleLogin)
	r.Post("/api/admin/logout", h.handleLogout)
	r.Get("/api/admin/session", h.handleSession)

	// Organizer API (protected)
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuthAPI)

		// Scoring
		r.Post("/api/admin/activities/{id}/award", h.handleAwardRankPoints)
		r.Post("/api/admin/points", h.handleRecordPoints)

		// Scoreboard control
		r.Post("/api/admin/freeze", h.handleFreeze)
		r.Post("/api/admin/unfreeze", h.handleUnfreeze)

		// Setup
		r.Post("/api/admin/groups", h.handleCreateGroup)
		r.Put("/api/admin/groups/{id}", h.handleRenameGroup)
		r.Post("/api/admin/activities", h.handleCreateActivity)
	})

	return r
}

// handleHealthz reports process liveness
func (h *Handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]string{"status": "ok"})
}
