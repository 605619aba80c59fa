package handlers

import (
	"net/http"

	"github.com/okleong/campscore/internal/auth"
	"github.com/okleong/campscore/internal/services"
	"github.com/okleong/campscore/internal/websocket"
)

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Groups      services.GroupServicer
	Activities  services.ActivityServicer
	Submissions services.SubmissionServicer
	Scoring     services.ScoringServicer
	Points      services.PointsServicer
	Leaderboard services.LeaderboardServicer
	Auth        *auth.Auth
	Hub         *websocket.Hub
	Log         HTTPLogger

	metricsHandler http.Handler
	// baseURL is the externally reachable scoreboard URL encoded into the
	// projection QR code.
	baseURL string
}

// New creates a new Handlers instance with all dependencies
func New(
	groups services.GroupServicer,
	activities services.ActivityServicer,
	submissions services.SubmissionServicer,
	scoring services.ScoringServicer,
	points services.PointsServicer,
	leaderboard services.LeaderboardServicer,
	organizerAuth *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
	metricsHandler http.Handler,
	baseURL string,
) *Handlers {
	return &Handlers{
		Groups:         groups,
		Activities:     activities,
		Submissions:    submissions,
		Scoring:        scoring,
		Points:         points,
		Leaderboard:    leaderboard,
		Auth:           organizerAuth,
		Hub:            hub,
		Log:            log,
		metricsHandler: metricsHandler,
		baseURL:        baseURL,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance for exercising API endpoints
func NewForTesting(
	groups services.GroupServicer,
	activities services.ActivityServicer,
	submissions services.SubmissionServicer,
	scoring services.ScoringServicer,
	points services.PointsServicer,
	leaderboard services.LeaderboardServicer,
) *Handlers {
	// Known password so tests can log in
	testAuth := auth.New("test-password")
	return &Handlers{
		Groups:      groups,
		Activities:  activities,
		Submissions: submissions,
		Scoring:     scoring,
		Points:      points,
		Leaderboard: leaderboard,
		Auth:        testAuth,
		Log:         NoopHTTPLogger{},
		baseURL:     "http://localhost:8081",
	}
}
