package handlers

import (
	"net/http"

	"github.com/okleong/campscore/internal/models"
)

// handleGetGroups returns the full roster
func (h *Handlers) handleGetGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Groups.ListGroups(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, groups)
}

// handleCreateGroup registers a group under its externally assigned id
func (h *Handlers) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	group, err := h.Groups.CreateGroup(r.Context(), req.ID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, group)
}

// handleRenameGroup updates a group's display name
func (h *Handlers) handleRenameGroup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIntParam(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req GroupRenameRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Groups.RenameGroup(r.Context(), id, req.Name); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, "Group renamed")
}

// handleGetActivities returns the activity schedule
func (h *Handlers) handleGetActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Activities.ListActivities(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, activities)
}

// handleCreateActivity adds an activity to the schedule
func (h *Handlers) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req ActivityCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	activity, err := h.Activities.CreateActivity(r.Context(), req.Name, models.ActivityCategory(req.Category), req.Day)
	if err != nil {
		respondError(w, err)
		return
	}
	respondCreated(w, activity)
}
