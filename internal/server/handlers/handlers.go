// Package handlers implements HTTP request handlers for the modelyard API.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/modelyard/modelyard/internal/serving"
	"github.com/modelyard/modelyard/pkg/types"
)

// Promoter runs retrain-and-promote workflows.
type Promoter interface {
	TrainAndPromote(ctx context.Context, req types.RetrainRequest) (types.ProductionRecord, error)
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	promoter Promoter
	state    *serving.State
	defaults types.ModelDefaults
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(promoter Promoter, state *serving.State, defaults types.ModelDefaults) *Handlers {
	return &Handlers{
		promoter: promoter,
		state:    state,
		defaults: defaults,
		logger:   slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError logs the internal error and returns a JSON error to the client.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// productionValue renders a record for responses, collapsing the zero record
// to an empty object.
func productionValue(rec types.ProductionRecord) any {
	if rec.IsZero() {
		return struct{}{}
	}
	return rec
}
