package repository

import (
	"context"
	"testing"
	"time"

	"github.com/okleong/campscore/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedGroup(t *testing.T, repo *Repository, id int, name string) {
	t.Helper()
	if err := repo.CreateGroup(context.Background(), id, name, time.Now().UTC()); err != nil {
		t.Fatalf("failed to seed group %d: %v", id, err)
	}
}

func seedActivity(t *testing.T, repo *Repository, name string, category models.ActivityCategory) int {
	t.Helper()
	id, err := repo.CreateActivity(context.Background(), name, category, 1)
	if err != nil {
		t.Fatalf("failed to seed activity: %v", err)
	}
	return int(id)
}

// ==================== Groups ====================

func TestCreateAndGetGroup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 3, "Eagles")

	g, err := repo.GetGroup(ctx, 3)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if g.ID != 3 || g.Name != "Eagles" {
		t.Errorf("got group %+v", g)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetGroup(context.Background(), 99)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateGroup_DuplicateID(t *testing.T) {
	repo := newTestRepo(t)

	seedGroup(t, repo, 1, "Eagles")
	err := repo.CreateGroup(context.Background(), 1, "Hawks", time.Now().UTC())
	if err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestListGroups_OrderedByID(t *testing.T) {
	repo := newTestRepo(t)

	seedGroup(t, repo, 5, "Otters")
	seedGroup(t, repo, 2, "Eagles")
	seedGroup(t, repo, 9, "Hawks")

	groups, err := repo.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].ID != 2 || groups[1].ID != 5 || groups[2].ID != 9 {
		t.Errorf("groups out of order: %v", groups)
	}
}

func TestRenameGroup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Group 1")
	if err := repo.RenameGroup(ctx, 1, "Thunderbirds"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}

	g, _ := repo.GetGroup(ctx, 1)
	if g.Name != "Thunderbirds" {
		t.Errorf("name = %q", g.Name)
	}

	if err := repo.RenameGroup(ctx, 42, "Ghosts"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for missing group, got %v", err)
	}
}

func TestCountGroups(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.CountGroups(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("empty roster: n=%d err=%v", n, err)
	}

	seedGroup(t, repo, 1, "A")
	seedGroup(t, repo, 2, "B")

	n, _ = repo.CountGroups(context.Background())
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
}

// ==================== Activities ====================

func TestCreateAndGetActivity(t *testing.T) {
	repo := newTestRepo(t)

	id := seedActivity(t, repo, "Raft Building", models.CategoryRankedTime)

	a, err := repo.GetActivity(context.Background(), id)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if a.DisplayName != "Raft Building" || a.Category != models.CategoryRankedTime {
		t.Errorf("got activity %+v", a)
	}
}

func TestGetActivity_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetActivity(context.Background(), 404)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListActivities_OrderedByDayThenID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	repo.CreateActivity(ctx, "Day 2 Hike", models.CategoryRankedTime, 2)
	repo.CreateActivity(ctx, "Day 1 Relay", models.CategoryRankedTime, 1)
	repo.CreateActivity(ctx, "Day 1 Quiz", models.CategoryDirectPoints, 1)

	activities, err := repo.ListActivities(ctx)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(activities))
	}
	if activities[0].DisplayName != "Day 1 Relay" || activities[2].DisplayName != "Day 2 Hike" {
		t.Errorf("activities out of order: %v", activities)
	}
}

// ==================== Submissions ====================

func TestUpsertSubmission_CreatesThenReplaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	actID := seedActivity(t, repo, "Relay", models.CategoryRankedTime)

	t0 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sub := models.TimeSubmission{
		ActivityID: actID, GroupID: 1, SubmittedBy: "leader-a",
		Minutes: 2, Seconds: 30, Centiseconds: 50,
	}

	stored, created, err := repo.UpsertSubmission(ctx, sub, t0)
	if err != nil {
		t.Fatalf("UpsertSubmission: %v", err)
	}
	if !created {
		t.Error("first write should report created")
	}
	if stored.ID == 0 {
		t.Error("stored submission should have an id")
	}

	// Same submitter records a faster time; row is replaced, not added
	sub.Minutes, sub.Seconds, sub.Centiseconds = 2, 10, 0
	t1 := t0.Add(time.Minute)
	replaced, created, err := repo.UpsertSubmission(ctx, sub, t1)
	if err != nil {
		t.Fatalf("UpsertSubmission replace: %v", err)
	}
	if created {
		t.Error("second write should report updated")
	}
	if replaced.ID != stored.ID {
		t.Errorf("replace changed id: %d -> %d", stored.ID, replaced.ID)
	}
	// created_at must survive the replace so tie-breaks stay stable
	if !replaced.CreatedAt.Equal(stored.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", stored.CreatedAt, replaced.CreatedAt)
	}

	subs, _ := repo.ListSubmissions(ctx, actID)
	if len(subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(subs))
	}
	if subs[0].Seconds != 10 {
		t.Errorf("time not replaced: %+v", subs[0])
	}
}

func TestUpsertSubmission_DifferentSubmittersKeepSeparateRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	actID := seedActivity(t, repo, "Relay", models.CategoryRankedTime)

	now := time.Now().UTC()
	for _, by := range []string{"leader-a", "leader-b"} {
		_, _, err := repo.UpsertSubmission(ctx, models.TimeSubmission{
			ActivityID: actID, GroupID: 1, SubmittedBy: by,
			Minutes: 1, Seconds: 0, Centiseconds: 0,
		}, now)
		if err != nil {
			t.Fatalf("UpsertSubmission(%s): %v", by, err)
		}
	}

	subs, _ := repo.ListSubmissions(ctx, actID)
	if len(subs) != 2 {
		t.Errorf("expected 2 submissions, got %d", len(subs))
	}
}

// ==================== Point events ====================

func TestInsertAndListPointEvents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	actID := seedActivity(t, repo, "Quiz", models.CategoryDirectPoints)

	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []models.PointEvent{
		{ID: "ev-1", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 50, Remarks: "Quiz winner", CreatedAt: t0},
		{ID: "ev-2", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: -10, Remarks: "Late to lineup", CreatedAt: t0.Add(time.Hour)},
	}
	for _, ev := range events {
		if err := repo.InsertPointEvent(ctx, ev); err != nil {
			t.Fatalf("InsertPointEvent(%s): %v", ev.ID, err)
		}
	}

	// Group history is newest first
	history, err := repo.ListPointEventsForGroup(ctx, 1)
	if err != nil {
		t.Fatalf("ListPointEventsForGroup: %v", err)
	}
	if len(history) != 2 || history[0].ID != "ev-2" {
		t.Errorf("history order wrong: %v", history)
	}

	totals, err := repo.TotalsByGroup(ctx)
	if err != nil {
		t.Fatalf("TotalsByGroup: %v", err)
	}
	if totals[1] != 40 {
		t.Errorf("total = %d, want 40", totals[1])
	}
}

func TestInsertPointEvent_DuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	actID := seedActivity(t, repo, "Quiz", models.CategoryDirectPoints)

	ev := models.PointEvent{ID: "dup", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 10, Remarks: "x", CreatedAt: time.Now().UTC()}
	if err := repo.InsertPointEvent(ctx, ev); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := repo.InsertPointEvent(ctx, ev); err != ErrDuplicate {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestAwardRankPoints_WritesBatchOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	seedGroup(t, repo, 2, "Hawks")
	actID := seedActivity(t, repo, "Relay", models.CategoryRankedTime)

	now := time.Now().UTC()
	batch := []models.PointEvent{
		{ID: "r-1", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 150, Remarks: "Relay - Rank 1 (1:02.10)", CreatedAt: now},
		{ID: "r-2", GroupID: 2, ActivityID: actID, AwardedBy: "org", Points: 120, Remarks: "Relay - Rank 2 (1:05.00)", CreatedAt: now},
	}

	if err := repo.AwardRankPoints(ctx, actID, "org", batch, now); err != nil {
		t.Fatalf("AwardRankPoints: %v", err)
	}

	awarded, err := repo.HasRankAward(ctx, actID)
	if err != nil || !awarded {
		t.Fatalf("HasRankAward = %v, %v", awarded, err)
	}

	// Second attempt loses on the rank_awards primary key and writes nothing
	retry := []models.PointEvent{
		{ID: "r-3", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 150, Remarks: "retry", CreatedAt: now},
	}
	if err := repo.AwardRankPoints(ctx, actID, "org", retry, now); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	all, _ := repo.ListPointEvents(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 events after failed retry, got %d", len(all))
	}
}

func TestAwardRankPoints_RollsBackOnEventFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedGroup(t, repo, 1, "Eagles")
	actID := seedActivity(t, repo, "Relay", models.CategoryRankedTime)

	now := time.Now().UTC()
	// Duplicate event ids inside the batch force a mid-transaction failure
	batch := []models.PointEvent{
		{ID: "same", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 150, Remarks: "a", CreatedAt: now},
		{ID: "same", GroupID: 1, ActivityID: actID, AwardedBy: "org", Points: 120, Remarks: "b", CreatedAt: now},
	}
	if err := repo.AwardRankPoints(ctx, actID, "org", batch, now); err == nil {
		t.Fatal("expected error from duplicate event ids")
	}

	// Nothing committed: marker and events both rolled back
	awarded, _ := repo.HasRankAward(ctx, actID)
	if awarded {
		t.Error("rank award marker should have rolled back")
	}
	all, _ := repo.ListPointEvents(ctx)
	if len(all) != 0 {
		t.Errorf("expected 0 events after rollback, got %d", len(all))
	}
}

// ==================== Freeze state ====================

func TestGetFreezeState_SeededUnfrozen(t *testing.T) {
	repo := newTestRepo(t)

	st, err := repo.GetFreezeState(context.Background())
	if err != nil {
		t.Fatalf("GetFreezeState: %v", err)
	}
	if st.IsFrozen {
		t.Error("fresh database should not be frozen")
	}
	if st.Version != 1 {
		t.Errorf("version = %d, want 1", st.Version)
	}
}

func TestCompareAndSetFreezeState_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	st, _ := repo.GetFreezeState(ctx)

	frozenAt := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	next := models.FreezeState{
		IsFrozen: true,
		Snapshot: map[int]int{1: 270, 2: 120},
		FrozenAt: &frozenAt,
	}
	if err := repo.CompareAndSetFreezeState(ctx, st.Version, next); err != nil {
		t.Fatalf("CompareAndSetFreezeState: %v", err)
	}

	got, err := repo.GetFreezeState(ctx)
	if err != nil {
		t.Fatalf("GetFreezeState: %v", err)
	}
	if !got.IsFrozen {
		t.Error("state should be frozen")
	}
	if got.Version != st.Version+1 {
		t.Errorf("version = %d, want %d", got.Version, st.Version+1)
	}
	if got.Snapshot[1] != 270 || got.Snapshot[2] != 120 {
		t.Errorf("snapshot = %v", got.Snapshot)
	}
	if got.FrozenAt == nil || !got.FrozenAt.Equal(frozenAt) {
		t.Errorf("frozen_at = %v", got.FrozenAt)
	}
}

func TestCompareAndSetFreezeState_StaleVersion(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	st, _ := repo.GetFreezeState(ctx)

	// First writer wins
	if err := repo.CompareAndSetFreezeState(ctx, st.Version, models.FreezeState{IsFrozen: true}); err != nil {
		t.Fatalf("first CAS: %v", err)
	}

	// Second writer raced with the same expected version and loses
	err := repo.CompareAndSetFreezeState(ctx, st.Version, models.FreezeState{IsFrozen: true})
	if err != ErrStaleVersion {
		t.Errorf("expected ErrStaleVersion, got %v", err)
	}
}
