package services

import (
	"fmt"
	"strings"
)

// Service errors
var (
	ErrInvalidMinutes    = &ServiceError{Message: "minutes must be between 0 and 59"}
	ErrInvalidSeconds    = &ServiceError{Message: "seconds must be between 0 and 59"}
	ErrInvalidCentis     = &ServiceError{Message: "centiseconds must be between 0 and 99"}
	ErrSubmitterRequired = &ServiceError{Message: "submitter is required"}
	ErrRemarksRequired   = &ServiceError{Message: "remarks are required for manual point adjustments"}
	ErrZeroPoints        = &ServiceError{Message: "points must not be zero"}
	ErrNotTimedActivity  = &ServiceError{Message: "activity does not accept time submissions"}
	ErrNotRankedActivity = &ServiceError{Message: "activity is not scored by ranked time"}
	ErrAlreadyAwarded    = &ServiceError{Message: "rank points have already been awarded for this activity"}
	ErrAlreadyFrozen     = &ServiceError{Message: "scoreboard is already frozen"}
	ErrNotFrozen         = &ServiceError{Message: "scoreboard is not frozen"}
	ErrFreezeConflict    = &ServiceError{Message: "another organizer changed the scoreboard state, try again"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NotCompleteError reports a failed completion gate along with the groups
// still missing a qualifying submission
type NotCompleteError struct {
	ActivityID int
	Missing    []int
}

func (e *NotCompleteError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("activity %d is not complete", e.ActivityID)
	}
	parts := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("activity %d is not complete: missing groups %s", e.ActivityID, strings.Join(parts, ", "))
}
