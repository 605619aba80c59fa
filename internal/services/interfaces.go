package services

import (
	"context"

	"github.com/okleong/campscore/internal/models"
)

// Publisher emits change notifications to the external feed. Delivery is
// at-least-once and unordered; consumers re-fetch rather than apply deltas.
type Publisher interface {
	TimeSubmitted(activityID, groupID int)
	ActivityScored(activityID, eventCount int)
	PointRecorded(groupID, activityID, points int)
	FreezeChanged(frozen bool)
}

// NoopPublisher discards all notifications, for tests and early wiring
type NoopPublisher struct{}

func (NoopPublisher) TimeSubmitted(int, int)      {}
func (NoopPublisher) ActivityScored(int, int)     {}
func (NoopPublisher) PointRecorded(int, int, int) {}
func (NoopPublisher) FreezeChanged(bool)          {}

// GroupServicer defines the interface for roster operations
type GroupServicer interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroup(ctx context.Context, id int) (*models.Group, error)
	CreateGroup(ctx context.Context, id int, name string) (*models.Group, error)
	RenameGroup(ctx context.Context, id int, name string) error
	SeedDefaultGroups(ctx context.Context, count int) (int, error)
}

// ActivityServicer defines the interface for activity operations
type ActivityServicer interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	GetActivity(ctx context.Context, id int) (*models.Activity, error)
	CreateActivity(ctx context.Context, displayName string, category models.ActivityCategory, day int) (*models.Activity, error)
}

// SubmissionServicer defines the interface for time submission operations
type SubmissionServicer interface {
	SubmitTime(ctx context.Context, sub TimeSubmitParams) (*SubmitResult, error)
	GetActivityTimes(ctx context.Context, activityID int) (*ActivityTimes, error)
}

// ScoringServicer defines the interface for rank and point assignment
type ScoringServicer interface {
	CheckCompletion(ctx context.Context, activityID int, expectedGroupIDs []int) (bool, error)
	TryAwardRankPoints(ctx context.Context, activityID int, expectedGroupIDs []int, awardedBy string) ([]models.PointEvent, error)
}

// PointsServicer defines the interface for manual point entry and history
type PointsServicer interface {
	RecordPointEvent(ctx context.Context, p RecordPointParams) (*models.PointEvent, error)
	ListGroupPoints(ctx context.Context, groupID int) ([]models.PointEvent, error)
}

// LeaderboardServicer defines the interface for the aggregated, frozen-aware
// leaderboard and its freeze transitions
type LeaderboardServicer interface {
	GetLeaderboard(ctx context.Context) (*Leaderboard, error)
	Freeze(ctx context.Context, frozenBy string) (*models.FreezeState, error)
	Unfreeze(ctx context.Context, unfrozenBy string) (*models.FreezeState, error)
	FreezeState(ctx context.Context) (*models.FreezeState, error)
}

// Ensure concrete types implement interfaces
var (
	_ GroupServicer       = (*GroupService)(nil)
	_ ActivityServicer    = (*ActivityService)(nil)
	_ SubmissionServicer  = (*SubmissionService)(nil)
	_ ScoringServicer     = (*ScoringService)(nil)
	_ PointsServicer      = (*PointsService)(nil)
	_ LeaderboardServicer = (*LeaderboardService)(nil)
)
