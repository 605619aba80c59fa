package services

import (
	"context"
	"sort"
	"time"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// LeaderboardServiceRepository defines the repository methods needed by LeaderboardService
type LeaderboardServiceRepository interface {
	repository.GroupRepository
	repository.PointEventRepository
	repository.StateRepository
}

// LeaderboardService aggregates point events into the leaderboard and
// owns the freeze/unfreeze transitions on the scoreboard state slot
type LeaderboardService struct {
	log     logger.Logger
	repo    LeaderboardServiceRepository
	clock   clock.Clock
	pub     Publisher
	metrics *metrics.Metrics
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(log logger.Logger, repo LeaderboardServiceRepository, clk clock.Clock, pub Publisher, m *metrics.Metrics) *LeaderboardService {
	return &LeaderboardService{log: log, repo: repo, clock: clk, pub: pub, metrics: m}
}

// Leaderboard is the frozen-aware read result. Consumers cannot tell a
// frozen board that happens to match live totals from one that does not.
type Leaderboard struct {
	Frozen   bool                      `json:"frozen"`
	FrozenAt *time.Time                `json:"frozen_at,omitempty"`
	Entries  []models.LeaderboardEntry `json:"entries"`
}

// buildEntries folds per-group totals over the full roster. Every known
// group appears, zero-filled when it has no events; sorting is total
// points descending with group id ascending as the stable tie-break.
func buildEntries(groups []models.Group, totals map[int]int) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, len(groups))
	for i, g := range groups {
		entries[i] = models.LeaderboardEntry{
			GroupID:     g.ID,
			GroupName:   g.Name,
			TotalPoints: totals[g.ID],
		}
	}
	return rankEntries(entries)
}

// snapshotEntries renders the frozen board. The snapshot keys decide who
// appears: a group registered after the freeze stays off the board until
// unfreeze. Names come from the live roster where the group still exists.
func snapshotEntries(groups []models.Group, snapshot map[int]int) []models.LeaderboardEntry {
	names := make(map[int]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}
	entries := make([]models.LeaderboardEntry, 0, len(snapshot))
	for id, points := range snapshot {
		entries = append(entries, models.LeaderboardEntry{
			GroupID:     id,
			GroupName:   names[id],
			TotalPoints: points,
		})
	}
	return rankEntries(entries)
}

func rankEntries(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].GroupID < entries[j].GroupID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Compute aggregates live totals for the full roster
func (s *LeaderboardService) Compute(ctx context.Context) ([]models.LeaderboardEntry, error) {
	start := s.clock.Now()

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.TotalsByGroup(ctx)
	if err != nil {
		return nil, err
	}

	entries := buildEntries(groups, totals)
	s.metrics.LeaderboardCompute.Observe(time.Since(start).Seconds())
	return entries, nil
}

// GetLeaderboard returns the snapshot verbatim while frozen, otherwise a
// fresh live computation
func (s *LeaderboardService) GetLeaderboard(ctx context.Context) (*Leaderboard, error) {
	st, err := s.repo.GetFreezeState(ctx)
	if err != nil {
		return nil, err
	}

	if st.IsFrozen {
		groups, err := s.repo.ListGroups(ctx)
		if err != nil {
			return nil, err
		}
		return &Leaderboard{
			Frozen:   true,
			FrozenAt: st.FrozenAt,
			Entries:  snapshotEntries(groups, st.Snapshot),
		}, nil
	}

	entries, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{Frozen: false, Entries: entries}, nil
}

// FreezeState returns the current scoreboard state slot
func (s *LeaderboardService) FreezeState(ctx context.Context) (*models.FreezeState, error) {
	return s.repo.GetFreezeState(ctx)
}

// Freeze captures the live totals into the state slot and flips the
// frozen flag, all behind one compare-and-set. A reader can never observe
// the frozen flag with a stale or missing snapshot, and two organizers
// racing to freeze resolve to exactly one winner.
func (s *LeaderboardService) Freeze(ctx context.Context, frozenBy string) (*models.FreezeState, error) {
	st, err := s.repo.GetFreezeState(ctx)
	if err != nil {
		return nil, err
	}
	if st.IsFrozen {
		return nil, ErrAlreadyFrozen
	}

	totals, err := s.repo.TotalsByGroup(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[int]int, len(groups))
	for _, g := range groups {
		snapshot[g.ID] = totals[g.ID]
	}

	now := s.clock.Now()
	next := models.FreezeState{
		IsFrozen: true,
		Snapshot: snapshot,
		FrozenAt: &now,
	}
	if err := s.repo.CompareAndSetFreezeState(ctx, st.Version, next); err != nil {
		if err == repository.ErrStaleVersion {
			return nil, ErrFreezeConflict
		}
		return nil, err
	}
	next.Version = st.Version + 1

	s.metrics.Frozen.Set(1)
	s.log.Info("Scoreboard frozen", "groups", len(snapshot), "frozen_by", frozenBy)
	s.pub.FreezeChanged(true)

	return &next, nil
}

// Unfreeze flips the frozen flag off. The snapshot is retained for audit
// but no longer served.
func (s *LeaderboardService) Unfreeze(ctx context.Context, unfrozenBy string) (*models.FreezeState, error) {
	st, err := s.repo.GetFreezeState(ctx)
	if err != nil {
		return nil, err
	}
	if !st.IsFrozen {
		return nil, ErrNotFrozen
	}

	next := models.FreezeState{
		IsFrozen: false,
		Snapshot: st.Snapshot,
		FrozenAt: st.FrozenAt,
	}
	if err := s.repo.CompareAndSetFreezeState(ctx, st.Version, next); err != nil {
		if err == repository.ErrStaleVersion {
			return nil, ErrFreezeConflict
		}
		return nil, err
	}
	next.Version = st.Version + 1

	s.metrics.Frozen.Set(0)
	s.log.Info("Scoreboard unfrozen", "unfrozen_by", unfrozenBy)
	s.pub.FreezeChanged(false)

	return &next, nil
}
