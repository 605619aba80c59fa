package handlers

// TimeSubmitRequest represents a request to record a group's time
type TimeSubmitRequest struct {
	GroupID      int    `json:"group_id"`
	SubmittedBy  string `json:"submitted_by"`
	Minutes      int    `json:"minutes"`
	Seconds      int    `json:"seconds"`
	Centiseconds int    `json:"centiseconds"`
}

// AwardRequest represents a request to score an activity by ranked time.
// ExpectedGroupIDs optionally narrows the completion gate; empty means
// the full roster must have competed.
type AwardRequest struct {
	ExpectedGroupIDs []int  `json:"expected_group_ids,omitempty"`
	AwardedBy        string `json:"awarded_by"`
}

// PointAdjustRequest represents a manual point adjustment
type PointAdjustRequest struct {
	GroupID    int    `json:"group_id"`
	ActivityID int    `json:"activity_id"`
	Points     int    `json:"points"`
	Remarks    string `json:"remarks"`
	AwardedBy  string `json:"awarded_by"`
}

// GroupCreateRequest represents a request to register a group
type GroupCreateRequest struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GroupRenameRequest represents a request to rename a group
type GroupRenameRequest struct {
	Name string `json:"name"`
}

// ActivityCreateRequest represents a request to add an activity
type ActivityCreateRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Day      int    `json:"day"`
}

// FreezeRequest represents a freeze or unfreeze request
type FreezeRequest struct {
	RequestedBy string `json:"requested_by"`
}

// LoginRequest represents an organizer login
type LoginRequest struct {
	Password string `json:"password"`
}
