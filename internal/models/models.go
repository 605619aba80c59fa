package models

import (
	"fmt"
	"time"
)

// ActivityCategory classifies how an activity is scored
type ActivityCategory string

const (
	// CategoryRankedTime activities collect completion times and are scored
	// by ranking the best time per group.
	CategoryRankedTime ActivityCategory = "ranked_time"
	// CategoryDirectPoints activities are scored by manual point entry only.
	CategoryDirectPoints ActivityCategory = "direct_points"
	// CategoryBonusTime activities collect times and may carry an extra
	// manual bonus alongside the ranked award.
	CategoryBonusTime ActivityCategory = "bonus_time"
)

// Valid reports whether the category is one of the known values
func (c ActivityCategory) Valid() bool {
	switch c {
	case CategoryRankedTime, CategoryDirectPoints, CategoryBonusTime:
		return true
	}
	return false
}

// Timed reports whether the activity accepts time submissions
func (c ActivityCategory) Timed() bool {
	return c == CategoryRankedTime || c == CategoryBonusTime
}

// Group represents a competing team. IDs are externally assigned and
// stable; the name is display-only and never affects scoring.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity represents a scored event. Immutable once created.
type Activity struct {
	ID          int              `json:"id"`
	DisplayName string           `json:"display_name"`
	Category    ActivityCategory `json:"category"`
	Day         int              `json:"day"`
}

// TimeSubmission is one recorded completion time for a group on an
// activity. Multiple submitters may record times for the same group; a
// submitter's repeat entry for the same group+activity replaces their
// earlier one.
type TimeSubmission struct {
	ID           int       `json:"id"`
	ActivityID   int       `json:"activity_id"`
	GroupID      int       `json:"group_id"`
	SubmittedBy  string    `json:"submitted_by"`
	Minutes      int       `json:"minutes"`
	Seconds      int       `json:"seconds"`
	Centiseconds int       `json:"centiseconds"`
	CreatedAt    time.Time `json:"created_at"`
}

// TotalCentis returns the submission's time as integer centiseconds.
// Comparing centiseconds avoids float equality surprises when two groups
// post identical times.
func (t TimeSubmission) TotalCentis() int {
	return t.Minutes*6000 + t.Seconds*100 + t.Centiseconds
}

// FormatClock renders a time as M:SS.CC for remarks and displays
func FormatClock(minutes, seconds, centiseconds int) string {
	return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, centiseconds)
}

// PointEvent is one signed point entry for a group. Append-only; never
// mutated after creation.
type PointEvent struct {
	ID         string    `json:"id"`
	GroupID    int       `json:"group_id"`
	ActivityID int       `json:"activity_id"`
	AwardedBy  string    `json:"awarded_by"`
	Points     int       `json:"points"`
	Remarks    string    `json:"remarks"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of the aggregated leaderboard
type LeaderboardEntry struct {
	GroupID     int    `json:"group_id"`
	GroupName   string `json:"group_name"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

// FreezeState is the single named scoreboard state slot. The snapshot maps
// group id to total points and is retained after unfreezing for audit.
type FreezeState struct {
	IsFrozen bool        `json:"is_frozen"`
	Snapshot map[int]int `json:"snapshot,omitempty"`
	FrozenAt *time.Time  `json:"frozen_at,omitempty"`
	Version  int         `json:"version"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
