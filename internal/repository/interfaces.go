package repository

import (
	"context"
	"time"

	"github.com/okleong/campscore/internal/models"
)

// GroupRepository defines roster data operations
type GroupRepository interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	GetGroup(ctx context.Context, id int) (*models.Group, error)
	CreateGroup(ctx context.Context, id int, name string, createdAt time.Time) error
	RenameGroup(ctx context.Context, id int, name string) error
	CountGroups(ctx context.Context) (int, error)
}

// ActivityRepository defines activity data operations
type ActivityRepository interface {
	ListActivities(ctx context.Context) ([]models.Activity, error)
	GetActivity(ctx context.Context, id int) (*models.Activity, error)
	CreateActivity(ctx context.Context, displayName string, category models.ActivityCategory, day int) (int64, error)
}

// SubmissionRepository defines time submission data operations
type SubmissionRepository interface {
	// UpsertSubmission inserts a submission or, when the same submitter
	// already recorded one for the group+activity, replaces its time fields
	// in a single atomic statement. The original created_at survives the
	// replace so tie-breaks stay stable. Returns the stored row and whether
	// it was newly created.
	UpsertSubmission(ctx context.Context, sub models.TimeSubmission, now time.Time) (models.TimeSubmission, bool, error)
	ListSubmissions(ctx context.Context, activityID int) ([]models.TimeSubmission, error)
}

// PointEventRepository defines point event data operations
type PointEventRepository interface {
	InsertPointEvent(ctx context.Context, ev models.PointEvent) error
	ListPointEvents(ctx context.Context) ([]models.PointEvent, error)
	ListPointEventsForGroup(ctx context.Context, groupID int) ([]models.PointEvent, error)
	// TotalsByGroup returns the signed sum of point events per group id.
	// Groups without events are absent; the aggregator zero-fills.
	TotalsByGroup(ctx context.Context) (map[int]int, error)
	// AwardRankPoints writes the rank-award marker for the activity and all
	// of its point events in one transaction. A marker that already exists
	// aborts the whole batch with ErrDuplicate; no partial writes.
	AwardRankPoints(ctx context.Context, activityID int, awardedBy string, events []models.PointEvent, now time.Time) error
	HasRankAward(ctx context.Context, activityID int) (bool, error)
}

// StateRepository defines freeze state slot operations
type StateRepository interface {
	GetFreezeState(ctx context.Context) (*models.FreezeState, error)
	// CompareAndSetFreezeState writes the new state only if the stored
	// version still equals expectedVersion. Returns ErrStaleVersion when
	// another writer got there first.
	CompareAndSetFreezeState(ctx context.Context, expectedVersion int, st models.FreezeState) error
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	GroupRepository
	ActivityRepository
	SubmissionRepository
	PointEventRepository
	StateRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
