package handlers

import (
	"net/http"
)

// handleCheckCompletion reports whether every expected group has a
// qualifying submission for the activity
func (h *Handlers) handleCheckCompletion(w http.ResponseWriter, r *http.Request) {
	activityID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	complete, err := h.Scoring.CheckCompletion(r.Context(), activityID, nil)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, CompletionResponse{ActivityID: activityID, Complete: complete})
}

// handleAwardRankPoints scores an activity: ranks the resolved best
// times and writes one point event per group, at most once per activity
func (h *Handlers) handleAwardRankPoints(w http.ResponseWriter, r *http.Request) {
	activityID, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req AwardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.AwardedBy == "" {
		req.AwardedBy = "organizer"
	}

	events, err := h.Scoring.TryAwardRankPoints(r.Context(), activityID, req.ExpectedGroupIDs, req.AwardedBy)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, AwardResponse{ActivityID: activityID, Events: events})
}
