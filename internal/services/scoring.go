package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/common/uuid"
	"github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// BestTime is one group's resolved best time for an activity
type BestTime struct {
	GroupID      int       `json:"group_id"`
	SubmissionID int       `json:"submission_id"`
	Minutes      int       `json:"minutes"`
	Seconds      int       `json:"seconds"`
	Centiseconds int       `json:"centiseconds"`
	TotalCentis  int       `json:"total_centis"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Clock renders the best time as M:SS.CC
func (b BestTime) Clock() string {
	return models.FormatClock(b.Minutes, b.Seconds, b.Centiseconds)
}

// ResolveBestTimes reduces raw submissions to one best time per group.
// The minimum time wins; ties go to the earliest created_at, then the
// lowest submission id, so resolution is a total order and reruns always
// produce the same result. Groups with no submissions are absent from the
// map, never zero-filled.
func ResolveBestTimes(subs []models.TimeSubmission) map[int]BestTime {
	best := make(map[int]BestTime)
	for _, sub := range subs {
		candidate := BestTime{
			GroupID:      sub.GroupID,
			SubmissionID: sub.ID,
			Minutes:      sub.Minutes,
			Seconds:      sub.Seconds,
			Centiseconds: sub.Centiseconds,
			TotalCentis:  sub.TotalCentis(),
			RecordedAt:   sub.CreatedAt,
		}
		current, ok := best[sub.GroupID]
		if !ok || lessBestTime(candidate, current) {
			best[sub.GroupID] = candidate
		}
	}
	return best
}

// lessBestTime orders best times: faster first, then earlier submission,
// then lower submission id
func lessBestTime(a, b BestTime) bool {
	if a.TotalCentis != b.TotalCentis {
		return a.TotalCentis < b.TotalCentis
	}
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.Before(b.RecordedAt)
	}
	return a.SubmissionID < b.SubmissionID
}

// RosterComplete reports whether every expected group has a resolved time.
// Membership is a set check, never a count comparison: duplicate or stray
// submissions can never satisfy the gate on their own.
func RosterComplete(best map[int]BestTime, expected []int) bool {
	return len(missingGroups(best, expected)) == 0
}

func missingGroups(best map[int]BestTime, expected []int) []int {
	var missing []int
	for _, id := range expected {
		if _, ok := best[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// RankBestTimes sorts resolved best times into final rank order
func RankBestTimes(best map[int]BestTime) []BestTime {
	ranked := make([]BestTime, 0, len(best))
	for _, bt := range best {
		ranked = append(ranked, bt)
	}
	sort.Slice(ranked, func(i, j int) bool {
		return lessBestTime(ranked[i], ranked[j])
	})
	return ranked
}

// ScoringServiceRepository defines the repository methods needed by ScoringService
type ScoringServiceRepository interface {
	repository.GroupRepository
	repository.ActivityRepository
	repository.SubmissionRepository
	repository.PointEventRepository
}

// ScoringService converts resolved best times into the one-time rank
// award for an activity
type ScoringService struct {
	log        logger.Logger
	repo       ScoringServiceRepository
	rankPoints []int
	clock      clock.Clock
	ids        uuid.Generator
	pub        Publisher
	metrics    *metrics.Metrics
}

// NewScoringService creates a new ScoringService. rankPoints maps rank-1
// to awarded points; ranks past the table receive zero.
func NewScoringService(log logger.Logger, repo ScoringServiceRepository, rankPoints []int, clk clock.Clock, ids uuid.Generator, pub Publisher, m *metrics.Metrics) *ScoringService {
	return &ScoringService{
		log:        log,
		repo:       repo,
		rankPoints: rankPoints,
		clock:      clk,
		ids:        ids,
		pub:        pub,
		metrics:    m,
	}
}

// pointsForRank looks up the configured award for a 1-based rank
func (s *ScoringService) pointsForRank(rank int) int {
	if rank < 1 || rank > len(s.rankPoints) {
		return 0
	}
	return s.rankPoints[rank-1]
}

// expectedRoster returns the given group ids, or the full roster when none
// are given
func (s *ScoringService) expectedRoster(ctx context.Context, expectedGroupIDs []int) ([]int, error) {
	if len(expectedGroupIDs) > 0 {
		return expectedGroupIDs, nil
	}
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids, nil
}

// CheckCompletion reports whether every expected group has a qualifying
// submission for the activity. Fails closed: any read error reports not
// complete along with the error.
func (s *ScoringService) CheckCompletion(ctx context.Context, activityID int, expectedGroupIDs []int) (bool, error) {
	expected, err := s.expectedRoster(ctx, expectedGroupIDs)
	if err != nil {
		return false, err
	}
	subs, err := s.repo.ListSubmissions(ctx, activityID)
	if err != nil {
		return false, err
	}
	return RosterComplete(ResolveBestTimes(subs), expected), nil
}

// TryAwardRankPoints ranks the activity's resolved best times and writes
// one point event per group, exactly once per activity. The returned
// events are the committed batch.
//
// This is not safely retryable as a bare retry: on any failure the caller
// must re-check the award state (or simply call again and treat
// ErrAlreadyAwarded as success by another writer) rather than assume
// nothing was written.
func (s *ScoringService) TryAwardRankPoints(ctx context.Context, activityID int, expectedGroupIDs []int, awardedBy string) ([]models.PointEvent, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		if err == repository.ErrNotFound {
			s.metrics.AwardAttempts.WithLabelValues("error").Inc()
			return nil, errors.NotFoundf("activity %d not found", activityID)
		}
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	if !activity.Category.Timed() {
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, ErrNotRankedActivity
	}

	// Cheap pre-check so the common double-click case fails before any
	// resolution work. The rank_awards primary key remains the guard that
	// actually serializes concurrent callers.
	awarded, err := s.repo.HasRankAward(ctx, activityID)
	if err != nil {
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	if awarded {
		s.metrics.AwardAttempts.WithLabelValues("already_awarded").Inc()
		return nil, ErrAlreadyAwarded
	}

	expected, err := s.expectedRoster(ctx, expectedGroupIDs)
	if err != nil {
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	subs, err := s.repo.ListSubmissions(ctx, activityID)
	if err != nil {
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	best := ResolveBestTimes(subs)

	if missing := missingGroups(best, expected); len(missing) > 0 {
		s.metrics.AwardAttempts.WithLabelValues("not_complete").Inc()
		return nil, &NotCompleteError{ActivityID: activityID, Missing: missing}
	}

	ranked := RankBestTimes(best)
	now := s.clock.Now()
	events := make([]models.PointEvent, len(ranked))
	var unscored []int
	for i, bt := range ranked {
		rank := i + 1
		points := s.pointsForRank(rank)
		if points == 0 {
			unscored = append(unscored, bt.GroupID)
		}
		events[i] = models.PointEvent{
			ID:         s.ids.New(),
			GroupID:    bt.GroupID,
			ActivityID: activityID,
			AwardedBy:  awardedBy,
			Points:     points,
			Remarks:    fmt.Sprintf("%s - Rank %d (%s)", activity.DisplayName, rank, bt.Clock()),
			CreatedAt:  now,
		}
	}
	if len(unscored) > 0 {
		// Policy, not a bug: the point table is shorter than the roster.
		s.log.Warn("Ranks beyond point table awarded zero points",
			"activity_id", activityID, "table_len", len(s.rankPoints), "groups", unscored)
	}

	if err := s.repo.AwardRankPoints(ctx, activityID, awardedBy, events, now); err != nil {
		if err == repository.ErrDuplicate {
			s.metrics.AwardAttempts.WithLabelValues("already_awarded").Inc()
			return nil, ErrAlreadyAwarded
		}
		s.metrics.AwardAttempts.WithLabelValues("error").Inc()
		return nil, err
	}

	s.metrics.AwardAttempts.WithLabelValues("awarded").Inc()
	s.metrics.PointEvents.WithLabelValues("rank").Add(float64(len(events)))
	s.log.Info("Rank points awarded",
		"activity_id", activityID, "activity", activity.DisplayName,
		"events", len(events), "awarded_by", awardedBy)
	s.pub.ActivityScored(activityID, len(events))

	return events, nil
}
