package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	apperrors "github.com/okleong/campscore/internal/errors"
	"github.com/okleong/campscore/internal/models"
)

// freezeSlot is the name of the single scoreboard state row
const freezeSlot = "freeze"

// Repository provides data access methods backed by SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for tests)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS groups (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			display_name TEXT NOT NULL,
			category TEXT NOT NULL,
			day INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS time_submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id INTEGER NOT NULL,
			group_id INTEGER NOT NULL,
			submitted_by TEXT NOT NULL,
			minutes INTEGER NOT NULL,
			seconds INTEGER NOT NULL,
			centiseconds INTEGER NOT NULL,
			revision INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id),
			FOREIGN KEY (group_id) REFERENCES groups(id),
			UNIQUE(activity_id, group_id, submitted_by)
		)`,
		`CREATE TABLE IF NOT EXISTS point_events (
			id TEXT PRIMARY KEY,
			group_id INTEGER NOT NULL,
			activity_id INTEGER NOT NULL,
			awarded_by TEXT NOT NULL,
			points INTEGER NOT NULL,
			remarks TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (group_id) REFERENCES groups(id),
			FOREIGN KEY (activity_id) REFERENCES activities(id)
		)`,
		`CREATE TABLE IF NOT EXISTS rank_awards (
			activity_id INTEGER PRIMARY KEY,
			awarded_by TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (activity_id) REFERENCES activities(id)
		)`,
		`CREATE TABLE IF NOT EXISTS app_state (
			name TEXT PRIMARY KEY,
			state TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_activity ON time_submissions(activity_id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_group ON point_events(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_points_activity ON point_events(activity_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	// Seed the freeze slot; the row is created once and only ever updated
	_, err := r.db.Exec(
		`INSERT OR IGNORE INTO app_state (name, state, version) VALUES (?, ?, 1)`,
		freezeSlot, `{"is_frozen":false}`,
	)
	return err
}

// isUniqueViolation reports whether err is a SQLite uniqueness or
// primary key constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// ==================== Group Methods ====================

// ListGroups returns all groups ordered by id
func (r *Repository) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetGroup retrieves a single group by id
func (r *Repository) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	var g models.Group
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM groups WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts a group with an externally assigned id
func (r *Repository) CreateGroup(ctx context.Context, id int, name string, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, createdAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// RenameGroup updates a group's display name. Names never affect scoring.
func (r *Repository) RenameGroup(ctx context.Context, id int, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountGroups returns the roster size
func (r *Repository) CountGroups(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&count)
	return count, err
}

// ==================== Activity Methods ====================

// ListActivities returns all activities ordered by day then id
func (r *Repository) ListActivities(ctx context.Context) ([]models.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, display_name, category, day FROM activities ORDER BY day, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.DisplayName, &a.Category, &a.Day); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// GetActivity retrieves a single activity by id
func (r *Repository) GetActivity(ctx context.Context, id int) (*models.Activity, error) {
	var a models.Activity
	err := r.db.QueryRowContext(ctx,
		`SELECT id, display_name, category, day FROM activities WHERE id = ?`, id,
	).Scan(&a.ID, &a.DisplayName, &a.Category, &a.Day)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateActivity inserts a new activity and returns its id
func (r *Repository) CreateActivity(ctx context.Context, displayName string, category models.ActivityCategory, day int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (display_name, category, day) VALUES (?, ?, ?)`,
		displayName, string(category), day,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ==================== Submission Methods ====================

// UpsertSubmission inserts or replaces a submitter's time for a
// group+activity in one statement. The conflict target carries the
// uniqueness; there is no separate existence check to race against.
func (r *Repository) UpsertSubmission(ctx context.Context, sub models.TimeSubmission, now time.Time) (models.TimeSubmission, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO time_submissions
			(activity_id, group_id, submitted_by, minutes, seconds, centiseconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(activity_id, group_id, submitted_by) DO UPDATE SET
			minutes = excluded.minutes,
			seconds = excluded.seconds,
			centiseconds = excluded.centiseconds,
			updated_at = excluded.updated_at,
			revision = revision + 1
		RETURNING id, revision, created_at`,
		sub.ActivityID, sub.GroupID, sub.SubmittedBy,
		sub.Minutes, sub.Seconds, sub.Centiseconds, now, now,
	)

	var revision int
	stored := sub
	if err := row.Scan(&stored.ID, &revision, &stored.CreatedAt); err != nil {
		return models.TimeSubmission{}, false, fmt.Errorf("upsert submission: %w", err)
	}
	return stored, revision == 1, nil
}

// ListSubmissions returns all submissions for an activity in a stable
// order (created_at, then id) so resolution is reproducible
func (r *Repository) ListSubmissions(ctx context.Context, activityID int) ([]models.TimeSubmission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, activity_id, group_id, submitted_by, minutes, seconds, centiseconds, created_at
		FROM time_submissions
		WHERE activity_id = ?
		ORDER BY created_at, id`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.TimeSubmission
	for rows.Next() {
		var s models.TimeSubmission
		if err := rows.Scan(&s.ID, &s.ActivityID, &s.GroupID, &s.SubmittedBy,
			&s.Minutes, &s.Seconds, &s.Centiseconds, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// ==================== Point Event Methods ====================

// InsertPointEvent appends a single point event
func (r *Repository) InsertPointEvent(ctx context.Context, ev models.PointEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO point_events (id, group_id, activity_id, awarded_by, points, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.GroupID, ev.ActivityID, ev.AwardedBy, ev.Points, ev.Remarks, ev.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// ListPointEvents returns every point event, oldest first
func (r *Repository) ListPointEvents(ctx context.Context) ([]models.PointEvent, error) {
	return r.queryPointEvents(ctx, `
		SELECT id, group_id, activity_id, awarded_by, points, remarks, created_at
		FROM point_events ORDER BY created_at, id`)
}

// ListPointEventsForGroup returns a group's point history, newest first
func (r *Repository) ListPointEventsForGroup(ctx context.Context, groupID int) ([]models.PointEvent, error) {
	return r.queryPointEvents(ctx, `
		SELECT id, group_id, activity_id, awarded_by, points, remarks, created_at
		FROM point_events WHERE group_id = ? ORDER BY created_at DESC, id DESC`, groupID)
}

func (r *Repository) queryPointEvents(ctx context.Context, query string, args ...interface{}) ([]models.PointEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.PointEvent
	for rows.Next() {
		var ev models.PointEvent
		if err := rows.Scan(&ev.ID, &ev.GroupID, &ev.ActivityID, &ev.AwardedBy,
			&ev.Points, &ev.Remarks, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// TotalsByGroup sums signed points per group id
func (r *Repository) TotalsByGroup(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT group_id, COALESCE(SUM(points), 0) FROM point_events GROUP BY group_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int]int)
	for rows.Next() {
		var groupID, total int
		if err := rows.Scan(&groupID, &total); err != nil {
			return nil, err
		}
		totals[groupID] = total
	}
	return totals, rows.Err()
}

// AwardRankPoints persists a rank-award batch atomically. The primary key
// on rank_awards is the idempotency guard: two concurrent awards for the
// same activity cannot both commit, and the loser sees ErrDuplicate with
// none of its events written.
func (r *Repository) AwardRankPoints(ctx context.Context, activityID int, awardedBy string, events []models.PointEvent, now time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO rank_awards (activity_id, awarded_by, created_at) VALUES (?, ?, ?)`,
		activityID, awardedBy, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	for _, ev := range events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO point_events (id, group_id, activity_id, awarded_by, points, remarks, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, ev.GroupID, ev.ActivityID, ev.AwardedBy, ev.Points, ev.Remarks, ev.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// HasRankAward reports whether an activity has already been scored
func (r *Repository) HasRankAward(ctx context.Context, activityID int) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rank_awards WHERE activity_id = ?`, activityID).Scan(&count)
	return count > 0, err
}

// ==================== State Methods ====================

// freezeBody is the JSON payload stored in the freeze slot
type freezeBody struct {
	IsFrozen bool        `json:"is_frozen"`
	Snapshot map[int]int `json:"snapshot,omitempty"`
	FrozenAt *time.Time  `json:"frozen_at,omitempty"`
}

// GetFreezeState loads the scoreboard state slot
func (r *Repository) GetFreezeState(ctx context.Context) (*models.FreezeState, error) {
	var raw string
	var version int
	err := r.db.QueryRowContext(ctx,
		`SELECT state, version FROM app_state WHERE name = ?`, freezeSlot,
	).Scan(&raw, &version)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var body freezeBody
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "corrupt freeze state")
	}

	return &models.FreezeState{
		IsFrozen: body.IsFrozen,
		Snapshot: body.Snapshot,
		FrozenAt: body.FrozenAt,
		Version:  version,
	}, nil
}

// CompareAndSetFreezeState transitions the scoreboard state slot. The
// version predicate in the WHERE clause makes the transition atomic:
// concurrent freezes with different snapshots resolve to exactly one
// winner.
func (r *Repository) CompareAndSetFreezeState(ctx context.Context, expectedVersion int, st models.FreezeState) error {
	raw, err := json.Marshal(freezeBody{
		IsFrozen: st.IsFrozen,
		Snapshot: st.Snapshot,
		FrozenAt: st.FrozenAt,
	})
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE app_state
		SET state = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE name = ? AND version = ?`,
		string(raw), freezeSlot, expectedVersion,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStaleVersion
	}
	return nil
}
