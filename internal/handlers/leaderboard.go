package handlers

import (
	"net/http"
	"time"

	"github.com/skip2/go-qrcode"
)

// handleGetLeaderboard returns the scoreboard: the frozen snapshot while
// frozen, live totals otherwise
func (h *Handlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.Leaderboard.GetLeaderboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, board)
}

// handleLeaderboardQR returns a QR code pointing browsers at the
// scoreboard, for the projector view
func (h *Handlers) handleLeaderboardQR(w http.ResponseWriter, r *http.Request) {
	png, err := qrcode.Encode(h.baseURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// handleFreeze captures current totals and freezes the scoreboard
func (h *Handlers) handleFreeze(w http.ResponseWriter, r *http.Request) {
	var req FreezeRequest
	decodeJSON(r, &req) // body is optional
	if req.RequestedBy == "" {
		req.RequestedBy = "organizer"
	}

	st, err := h.Leaderboard.Freeze(r.Context(), req.RequestedBy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, freezeResponse(st.IsFrozen, st.FrozenAt))
}

// handleUnfreeze returns the scoreboard to live totals
func (h *Handlers) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	var req FreezeRequest
	decodeJSON(r, &req) // body is optional
	if req.RequestedBy == "" {
		req.RequestedBy = "organizer"
	}

	st, err := h.Leaderboard.Unfreeze(r.Context(), req.RequestedBy)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, freezeResponse(st.IsFrozen, st.FrozenAt))
}

// handleGetFreezeState reports whether the scoreboard is frozen
func (h *Handlers) handleGetFreezeState(w http.ResponseWriter, r *http.Request) {
	st, err := h.Leaderboard.FreezeState(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, freezeResponse(st.IsFrozen, st.FrozenAt))
}

func freezeResponse(frozen bool, at *time.Time) FreezeStateResponse {
	resp := FreezeStateResponse{Frozen: frozen}
	if at != nil {
		resp.FrozenAt = at.UTC().Format(time.RFC3339)
	}
	return resp
}
