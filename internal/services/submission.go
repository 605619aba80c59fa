package services

import (
	"context"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
)

// SubmissionServiceRepository defines the repository methods needed by SubmissionService
type SubmissionServiceRepository interface {
	repository.GroupRepository
	repository.ActivityRepository
	repository.SubmissionRepository
	HasRankAward(ctx context.Context, activityID int) (bool, error)
}

// SubmissionService handles time submission business logic
type SubmissionService struct {
	log     logger.Logger
	repo    SubmissionServiceRepository
	clock   clock.Clock
	pub     Publisher
	metrics *metrics.Metrics
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(log logger.Logger, repo SubmissionServiceRepository, clk clock.Clock, pub Publisher, m *metrics.Metrics) *SubmissionService {
	return &SubmissionService{log: log, repo: repo, clock: clk, pub: pub, metrics: m}
}

// TimeSubmitParams carries one time submission
type TimeSubmitParams struct {
	ActivityID   int
	GroupID      int
	SubmittedBy  string
	Minutes      int
	Seconds      int
	Centiseconds int
}

// SubmitResult reports whether the submission was created or replaced an
// earlier one from the same submitter
type SubmitResult struct {
	Status     string                `json:"status"` // "created" or "updated"
	Submission models.TimeSubmission `json:"submission"`
}

// ActivityTimes bundles everything a scoring screen needs for one
// activity: the raw submissions, the resolved best time per group, and
// whether the full roster has competed.
type ActivityTimes struct {
	Activity    models.Activity         `json:"activity"`
	Submissions []models.TimeSubmission `json:"submissions"`
	BestTimes   map[int]BestTime        `json:"best_times"`
	Complete    bool                    `json:"complete"`
	Awarded     bool                    `json:"awarded"`
}

// validateTimeParts checks the MM:SS.CC components
func validateTimeParts(minutes, seconds, centiseconds int) error {
	if minutes < 0 || minutes > 59 {
		return ErrInvalidMinutes
	}
	if seconds < 0 || seconds > 59 {
		return ErrInvalidSeconds
	}
	if centiseconds < 0 || centiseconds > 99 {
		return ErrInvalidCentis
	}
	return nil
}

// SubmitTime validates and upserts one submission. The same submitter
// recording again for the same group+activity replaces their earlier
// time; other submitters' entries stay, and the resolver picks the best
// among all of them.
func (s *SubmissionService) SubmitTime(ctx context.Context, p TimeSubmitParams) (*SubmitResult, error) {
	if p.SubmittedBy == "" {
		return nil, ErrSubmitterRequired
	}
	if err := validateTimeParts(p.Minutes, p.Seconds, p.Centiseconds); err != nil {
		return nil, err
	}

	activity, err := s.repo.GetActivity(ctx, p.ActivityID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("activity %d not found", p.ActivityID)
		}
		return nil, err
	}
	if !activity.Category.Timed() {
		return nil, ErrNotTimedActivity
	}

	if _, err := s.repo.GetGroup(ctx, p.GroupID); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("group %d not found", p.GroupID)
		}
		return nil, err
	}

	stored, created, err := s.repo.UpsertSubmission(ctx, models.TimeSubmission{
		ActivityID:   p.ActivityID,
		GroupID:      p.GroupID,
		SubmittedBy:  p.SubmittedBy,
		Minutes:      p.Minutes,
		Seconds:      p.Seconds,
		Centiseconds: p.Centiseconds,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	status := "updated"
	if created {
		status = "created"
	}
	s.metrics.Submissions.WithLabelValues(status).Inc()
	s.log.Info("Time recorded",
		"activity_id", p.ActivityID, "group_id", p.GroupID, "submitted_by", p.SubmittedBy,
		"time", models.FormatClock(p.Minutes, p.Seconds, p.Centiseconds), "status", status)
	s.pub.TimeSubmitted(p.ActivityID, p.GroupID)

	return &SubmitResult{Status: status, Submission: stored}, nil
}

// GetActivityTimes returns the activity's submissions with resolved best
// times and the completion flag against the full roster
func (s *SubmissionService) GetActivityTimes(ctx context.Context, activityID int) (*ActivityTimes, error) {
	activity, err := s.repo.GetActivity(ctx, activityID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFoundf("activity %d not found", activityID)
		}
		return nil, err
	}

	subs, err := s.repo.ListSubmissions(ctx, activityID)
	if err != nil {
		return nil, err
	}
	best := ResolveBestTimes(subs)

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	expected := make([]int, len(groups))
	for i, g := range groups {
		expected[i] = g.ID
	}

	awarded, err := s.repo.HasRankAward(ctx, activityID)
	if err != nil {
		return nil, err
	}

	return &ActivityTimes{
		Activity:    *activity,
		Submissions: subs,
		BestTimes:   best,
		Complete:    RosterComplete(best, expected),
		Awarded:     awarded,
	}, nil
}
