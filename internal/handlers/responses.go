package handlers

import "github.com/okleong/campscore/internal/models"

// AwardResponse is the response for a successful rank scoring
type AwardResponse struct {
	ActivityID int                 `json:"activity_id"`
	Events     []models.PointEvent `json:"events"`
}

// CompletionResponse is the response for a completion check
type CompletionResponse struct {
	ActivityID int  `json:"activity_id"`
	Complete   bool `json:"complete"`
}

// GroupPointsResponse is a group's point history with its running total
type GroupPointsResponse struct {
	GroupID int                 `json:"group_id"`
	Total   int                 `json:"total"`
	Events  []models.PointEvent `json:"events"`
}

// FreezeStateResponse is the response for freeze state transitions
type FreezeStateResponse struct {
	Frozen   bool   `json:"frozen"`
	FrozenAt string `json:"frozen_at,omitempty"`
}

// SeedResponse reports how many default groups were created
type SeedResponse struct {
	Created int `json:"created"`
}

// SessionResponse reports whether the caller holds an organizer session
type SessionResponse struct {
	Authenticated bool `json:"authenticated"`
}
