package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okleong/campscore/internal/common/clock"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/metrics"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/repository"
	"github.com/okleong/campscore/internal/testutil"
)

func newSubmissionFixture(t *testing.T) (*SubmissionService, *repository.Repository, *clock.Fixed) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	clk := &clock.Fixed{Time: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewSubmissionService(logger.New(), repo, clk, NoopPublisher{}, metrics.New())
	return svc, repo, clk
}

func TestSubmitTime_CreatedThenUpdated(t *testing.T) {
	svc, repo, clk := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 1)
	actID := seedTimedActivity(t, repo, "Relay")

	params := TimeSubmitParams{
		ActivityID: actID, GroupID: 1, SubmittedBy: "leader-a",
		Minutes: 2, Seconds: 30, Centiseconds: 5,
	}
	result, err := svc.SubmitTime(ctx, params)
	if err != nil {
		t.Fatalf("SubmitTime: %v", err)
	}
	if result.Status != "created" {
		t.Errorf("status = %q, want created", result.Status)
	}

	clk.Advance(time.Minute)
	params.Seconds = 20
	result, err = svc.SubmitTime(ctx, params)
	if err != nil {
		t.Fatalf("SubmitTime replace: %v", err)
	}
	if result.Status != "updated" {
		t.Errorf("status = %q, want updated", result.Status)
	}
	if result.Submission.Seconds != 20 {
		t.Errorf("stored seconds = %d", result.Submission.Seconds)
	}
}

func TestSubmitTime_Validation(t *testing.T) {
	svc, repo, _ := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 1)
	actID := seedTimedActivity(t, repo, "Relay")

	base := TimeSubmitParams{ActivityID: actID, GroupID: 1, SubmittedBy: "leader", Minutes: 1, Seconds: 30, Centiseconds: 0}

	tests := []struct {
		name   string
		mutate func(*TimeSubmitParams)
		want   error
	}{
		{"negative minutes", func(p *TimeSubmitParams) { p.Minutes = -1 }, ErrInvalidMinutes},
		{"minutes too large", func(p *TimeSubmitParams) { p.Minutes = 60 }, ErrInvalidMinutes},
		{"seconds too large", func(p *TimeSubmitParams) { p.Seconds = 60 }, ErrInvalidSeconds},
		{"negative seconds", func(p *TimeSubmitParams) { p.Seconds = -1 }, ErrInvalidSeconds},
		{"centis too large", func(p *TimeSubmitParams) { p.Centiseconds = 100 }, ErrInvalidCentis},
		{"missing submitter", func(p *TimeSubmitParams) { p.SubmittedBy = "" }, ErrSubmitterRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := svc.SubmitTime(ctx, p)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSubmitTime_BoundaryValuesAccepted(t *testing.T) {
	svc, repo, _ := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 1)
	actID := seedTimedActivity(t, repo, "Relay")

	// 0:00.00 and 59:59.99 are both valid
	for _, p := range []TimeSubmitParams{
		{ActivityID: actID, GroupID: 1, SubmittedBy: "a", Minutes: 0, Seconds: 0, Centiseconds: 0},
		{ActivityID: actID, GroupID: 1, SubmittedBy: "b", Minutes: 59, Seconds: 59, Centiseconds: 99},
	} {
		if _, err := svc.SubmitTime(ctx, p); err != nil {
			t.Errorf("SubmitTime(%d:%02d.%02d): %v", p.Minutes, p.Seconds, p.Centiseconds, err)
		}
	}
}

func TestSubmitTime_RejectsNonTimedActivity(t *testing.T) {
	svc, repo, _ := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 1)
	id, _ := repo.CreateActivity(ctx, "Skit Night", models.CategoryDirectPoints, 2)

	_, err := svc.SubmitTime(ctx, TimeSubmitParams{
		ActivityID: int(id), GroupID: 1, SubmittedBy: "leader", Minutes: 1,
	})
	if !errors.Is(err, ErrNotTimedActivity) {
		t.Errorf("err = %v, want ErrNotTimedActivity", err)
	}
}

func TestSubmitTime_UnknownGroupOrActivity(t *testing.T) {
	svc, repo, _ := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 1)
	actID := seedTimedActivity(t, repo, "Relay")

	if _, err := svc.SubmitTime(ctx, TimeSubmitParams{ActivityID: 404, GroupID: 1, SubmittedBy: "x", Minutes: 1}); err == nil {
		t.Error("expected error for unknown activity")
	}
	if _, err := svc.SubmitTime(ctx, TimeSubmitParams{ActivityID: actID, GroupID: 404, SubmittedBy: "x", Minutes: 1}); err == nil {
		t.Error("expected error for unknown group")
	}
}

func TestGetActivityTimes(t *testing.T) {
	svc, repo, clk := newSubmissionFixture(t)
	ctx := context.Background()

	seedRoster(t, repo, 2)
	actID := seedTimedActivity(t, repo, "Relay")

	submit(t, repo, clk, actID, 1, "leader-a", 2, 0, 0)
	submit(t, repo, clk, actID, 1, "leader-b", 1, 45, 0)

	times, err := svc.GetActivityTimes(ctx, actID)
	if err != nil {
		t.Fatalf("GetActivityTimes: %v", err)
	}
	if len(times.Submissions) != 2 {
		t.Errorf("submissions = %d, want 2", len(times.Submissions))
	}
	if times.BestTimes[1].Minutes != 1 || times.BestTimes[1].Seconds != 45 {
		t.Errorf("best time = %+v", times.BestTimes[1])
	}
	if times.Complete {
		t.Error("group 2 has no time; activity must not be complete")
	}
	if times.Awarded {
		t.Error("unscored activity must not report awarded")
	}

	submit(t, repo, clk, actID, 2, "leader-a", 2, 30, 0)

	times, _ = svc.GetActivityTimes(ctx, actID)
	if !times.Complete {
		t.Error("full roster should report complete")
	}
}
