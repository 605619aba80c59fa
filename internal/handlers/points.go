package handlers

import (
	"net/http"

	"github.com/okleong/campscore/internal/services"
)

// handleRecordPoints appends a manual signed point adjustment
func (h *Handlers) handleRecordPoints(w http.ResponseWriter, r *http.Request) {
	var req PointAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.AwardedBy == "" {
		req.AwardedBy = "organizer"
	}

	ev, err := h.Points.RecordPointEvent(r.Context(), services.RecordPointParams{
		GroupID:    req.GroupID,
		ActivityID: req.ActivityID,
		Points:     req.Points,
		Remarks:    req.Remarks,
		AwardedBy:  req.AwardedBy,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, ev)
}

// handleGetGroupPoints returns a group's point history with its total
func (h *Handlers) handleGetGroupPoints(w http.ResponseWriter, r *http.Request) {
	groupID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	events, err := h.Points.ListGroupPoints(r.Context(), groupID)
	if err != nil {
		respondError(w, err)
		return
	}

	total := 0
	for _, ev := range events {
		total += ev.Points
	}
	respondOK(w, GroupPointsResponse{GroupID: groupID, Total: total, Events: events})
}
