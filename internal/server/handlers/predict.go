package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/modelyard/modelyard/pkg/types"
)

// Accepted input range for height_cm, enforced before reaching the core.
const (
	minHeightCM = 30
	maxHeightCM = 300
)

type predictRequest struct {
	HeightCM *float64 `json:"height_cm"`
}

// Predict runs the current production model on one input and returns the
// prediction tagged with the metadata that produced it.
func (h *Handlers) Predict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	if req.HeightCM == nil || *req.HeightCM < minHeightCM || *req.HeightCM > maxHeightCM {
		h.writeError(w, http.StatusUnprocessableEntity,
			"height_cm must be a number between 30 and 300", nil)
		return
	}

	y, meta, err := h.state.Predict(*req.HeightCM)
	if err != nil {
		var unavailable *types.ModelUnavailableError
		if errors.As(err, &unavailable) {
			h.writeError(w, http.StatusServiceUnavailable, unavailable.Reason, nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "prediction failed", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"y":     y,
		"model": meta,
	})
}
