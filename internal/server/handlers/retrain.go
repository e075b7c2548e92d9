package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/modelyard/modelyard/internal/train"
	"github.com/modelyard/modelyard/pkg/types"
)

type retrainRequest struct {
	Trainer   string   `json:"trainer"`
	ModelType string   `json:"model_type,omitempty"`
	YValue    *float64 `json:"y_value,omitempty"`
}

// Retrain runs the retrain-and-promote workflow and refreshes the serving
// state with the newly promoted model.
func (h *Handlers) Retrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "invalid request body", err)
		return
	}
	trainer := strings.TrimSpace(req.Trainer)
	if trainer == "" || len(trainer) > train.MaxTrainerLen {
		h.writeError(w, http.StatusUnprocessableEntity,
			"trainer must be a non-empty string of at most 200 characters", nil)
		return
	}

	coreReq := types.RetrainRequest{
		Trainer:   trainer,
		ModelType: h.defaults.DefaultType,
		YValue:    h.defaults.DefaultYValue,
	}
	if req.ModelType != "" {
		coreReq.ModelType = types.ModelType(req.ModelType)
	}
	if req.YValue != nil {
		coreReq.YValue = *req.YValue
	}

	production, err := h.promoter.TrainAndPromote(r.Context(), coreReq)
	if err != nil {
		// Bad arguments and data-quality problems are the caller's to fix;
		// everything else (missing dataset, tracking outage, registry I/O)
		// is a server-side failure.
		var invalid *types.InvalidArgumentError
		var badRow *types.InvalidRowError
		var noColumn *types.MissingHeightColumnError
		switch {
		case errors.As(err, &invalid):
			h.writeError(w, http.StatusUnprocessableEntity, invalid.Reason, nil)
		case errors.As(err, &badRow), errors.As(err, &noColumn), errors.Is(err, types.ErrEmptyDataset):
			h.writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
		default:
			h.writeError(w, http.StatusInternalServerError, "Retrain failed: "+err.Error(), err)
		}
		return
	}

	// The promotion is durable; make the serving view match it.
	h.state.Refresh()
	snap := h.state.Snapshot()
	if snap.Status != types.ServingReady {
		msg := snap.LoadErr
		if msg == "" {
			msg = "Model not available after retrain."
		}
		h.writeError(w, http.StatusServiceUnavailable, msg, nil)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"production": production,
	})
}
