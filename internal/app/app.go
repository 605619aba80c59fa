package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okleong/campscore/internal/auth"
	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/common/uuid"
	"github.com/okleong/campscore/internal/config"
	"github.com/okleong/campscore/internal/eventbus"
	"github.com/okleong/campscore/internal/handlers"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/repository"
	"github.com/okleong/campscore/internal/services"
	"github.com/okleong/campscore/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log         logger.Logger
	cfg         *config.Config
	handlers    *handlers.Handlers
	repo        *repository.Repository
	bus         *eventbus.Bus
	cancelRelay context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, organizerAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	ids := uuid.NewGoogle()
	m := metrics.New()
	bus := eventbus.New(log, cfg.EventBufferSize)

	// Initialize services
	groupService := services.NewGroupService(log, repo, clk)
	activityService := services.NewActivityService(log, repo)
	submissionService := services.NewSubmissionService(log, repo, clk, bus, m)
	scoringService := services.NewScoringService(log, repo, cfg.RankPoints, clk, ids, bus, m)
	pointsService := services.NewPointsService(log, repo, clk, ids, bus, m)
	leaderboardService := services.NewLeaderboardService(log, repo, clk, bus, m)

	// Seed the default roster on first boot
	if cfg.GroupCount > 0 {
		created, err := groupService.SeedDefaultGroups(context.Background(), cfg.GroupCount)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to seed roster: %w", err)
		}
		if created > 0 {
			log.Info("Seeded default roster", "groups", created)
		}
	}

	// Hub relays bus events to connected scoreboard clients. Subscribe
	// before the first publish; the in-process transport does not replay.
	hub := websocket.New(log, leaderboardService)
	hub.Start()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	if err != nil {
		cancel()
		repo.Close()
		return nil, fmt.Errorf("failed to subscribe to event bus: %w", err)
	}
	go hub.Relay(ctx, events)

	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, cfg.Addr)

	h := handlers.New(
		groupService,
		activityService,
		submissionService,
		scoringService,
		pointsService,
		leaderboardService,
		organizerAuth,
		hub,
		log,
		m.Handler(),
		baseURL,
	)

	return &App{
		log:         log,
		cfg:         cfg,
		handlers:    h,
		repo:        repo,
		bus:         bus,
		cancelRelay: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelRelay != nil {
		a.cancelRelay()
	}
	if a.bus != nil {
		a.bus.Close()
	}
	if a.repo != nil {
		a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run() error {
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, a.cfg.Addr)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Scoreboard QR", "url", baseURL+"/api/leaderboard/qr")
	return http.ListenAndServe(a.cfg.Addr, a.Router())
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
