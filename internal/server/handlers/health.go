package handlers

import (
	"net/http"
)

// Health returns the server health status and the current production record
// (or an empty object before the first promotion). It never fails.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"production": productionValue(snap.Metadata),
	})
}
