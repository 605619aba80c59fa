package handlers

import (
	"net/http"

	"github.com/okleong/campscore/internal/services"
)

// handleSubmitTime records a group's time for a timed activity
func (h *Handlers) handleSubmitTime(w http.ResponseWriter, r *http.Request) {
	activityID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req TimeSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Submissions.SubmitTime(r.Context(), services.TimeSubmitParams{
		ActivityID:   activityID,
		GroupID:      req.GroupID,
		SubmittedBy:  req.SubmittedBy,
		Minutes:      req.Minutes,
		Seconds:      req.Seconds,
		Centiseconds: req.Centiseconds,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	if result.Status == "created" {
		respondCreated(w, result)
		return
	}
	respondOK(w, result)
}

// handleGetActivityTimes returns all submissions for an activity with
// resolved best times and the completion flag
func (h *Handlers) handleGetActivityTimes(w http.ResponseWriter, r *http.Request) {
	activityID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	times, err := h.Submissions.GetActivityTimes(r.Context(), activityID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, times)
}
