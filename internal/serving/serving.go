// Package serving maintains the process-wide cached view of the current
// production model and answers prediction requests from it.
package serving

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/modelyard/modelyard/internal/metrics"
	"github.com/modelyard/modelyard/internal/model"
	"github.com/modelyard/modelyard/internal/registry"
	"github.com/modelyard/modelyard/pkg/types"
)

// NoModelMessage is the guidance returned before any successful promotion.
const NoModelMessage = "No production model available yet. Call POST /retrain first to create and promote a model."

// Snapshot is a consistent copy of the serving view: callers never observe a
// torn mixture of old model and new metadata.
type Snapshot struct {
	Status   types.ServingStatus
	Metadata types.ProductionRecord
	LoadErr  string
}

// State is the lock-guarded serving view. It is rebuilt wholesale on every
// Refresh and never partially updated.
type State struct {
	root   string
	logger *slog.Logger

	mu      sync.Mutex
	status  types.ServingStatus
	model   model.Model
	meta    types.ProductionRecord
	loadErr string
}

// New creates an unrefreshed State for the project root.
func New(root string, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{
		root:   root,
		logger: logger,
		status: types.ServingUninitialized,
	}
}

// Refresh re-reads the registry and rebuilds the serving view from scratch.
// A missing record yields NO_MODEL; a record whose artifact cannot be loaded
// yields LOAD_FAILED with the error recorded. Load failures never propagate:
// a broken production pointer must not take down the serving process.
func (s *State) Refresh() {
	meta := registry.ReadCurrent(s.root)

	var (
		m       model.Model
		status  types.ServingStatus
		loadErr string
	)

	switch {
	case meta.IsZero():
		status = types.ServingNoModel
		loadErr = NoModelMessage
	default:
		artifactPath := filepath.FromSlash(meta.ArtifactPath)
		if !filepath.IsAbs(artifactPath) {
			artifactPath = filepath.Join(s.root, artifactPath)
		}
		loaded, err := model.Load(artifactPath)
		if err != nil {
			status = types.ServingLoadFailed
			loadErr = fmt.Sprintf("Failed to load production model: %v", err)
			metrics.ModelLoadFailures.Add(1)
			s.logger.Error("failed to load production model", "run_id", meta.RunID, "error", err)
		} else {
			status = types.ServingReady
			m = loaded
			metrics.ModelReloads.Add(1)
			s.logger.Info("loaded production model", "run_id", meta.RunID, "model_type", meta.ModelType)
		}
	}

	s.mu.Lock()
	s.status = status
	s.model = m
	s.meta = meta
	s.loadErr = loadErr
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the current serving view.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Status: s.status, Metadata: s.meta, LoadErr: s.loadErr}
}

// Predict runs the current production model on one input and returns the
// prediction together with the metadata snapshot that produced it. Without a
// loaded model it fails with ModelUnavailableError carrying the stored load
// error or the default guidance.
func (s *State) Predict(heightCM float64) (float64, types.ProductionRecord, error) {
	s.mu.Lock()
	m := s.model
	meta := s.meta
	loadErr := s.loadErr
	s.mu.Unlock()

	if m == nil {
		metrics.PredictionsRejected.Add(1)
		if loadErr == "" {
			loadErr = NoModelMessage
		}
		return 0, types.ProductionRecord{}, &types.ModelUnavailableError{Reason: loadErr}
	}

	metrics.PredictionsTotal.Add(1)
	return m.Predict(heightCM), meta, nil
}
