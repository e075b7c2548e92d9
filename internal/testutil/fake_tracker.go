// Package testutil provides shared test utilities for modelyard.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelyard/modelyard/internal/tracking"
)

// Compile-time interface satisfaction check.
var _ tracking.Tracker = (*FakeTracker)(nil)

// FakeTracker is an in-memory tracking sink for testing. Configure the
// failure fields to simulate a down tracking service.
type FakeTracker struct {
	mu sync.Mutex

	StartErr    error
	ParamErr    error
	MetricErr   error
	ArtifactErr error
	EndErr      error

	runs int
	Runs []*FakeRun
}

// NewFakeTracker creates an empty fake tracker.
func NewFakeTracker() *FakeTracker {
	return &FakeTracker{}
}

// Name returns the tracker identifier.
func (t *FakeTracker) Name() string { return "fake" }

// StartRun creates an in-memory run, or fails with StartErr.
func (t *FakeTracker) StartRun(_ context.Context, experiment string) (tracking.Run, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.StartErr != nil {
		return nil, t.StartErr
	}
	t.runs++
	run := &FakeRun{
		tracker:    t,
		RunID:      fmt.Sprintf("fake-run-%d", t.runs),
		Experiment: experiment,
		Params:     make(map[string]string),
		Metrics:    make(map[string]float64),
	}
	t.Runs = append(t.Runs, run)
	return run, nil
}

// LastRun returns the most recently started run, or nil.
func (t *FakeTracker) LastRun() *FakeRun {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.Runs) == 0 {
		return nil
	}
	return t.Runs[len(t.Runs)-1]
}

// FakeRun records everything logged against it.
type FakeRun struct {
	tracker *FakeTracker

	RunID      string
	Experiment string
	Params     map[string]string
	Metrics    map[string]float64
	Artifacts  []string
	Ended      bool
}

// ID returns the fake run ID.
func (r *FakeRun) ID() string { return r.RunID }

// LogParam records a parameter, or fails with the tracker's ParamErr.
func (r *FakeRun) LogParam(_ context.Context, key, value string) error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	if r.tracker.ParamErr != nil {
		return r.tracker.ParamErr
	}
	r.Params[key] = value
	return nil
}

// LogMetric records a metric, or fails with the tracker's MetricErr.
func (r *FakeRun) LogMetric(_ context.Context, key string, value float64) error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	if r.tracker.MetricErr != nil {
		return r.tracker.MetricErr
	}
	r.Metrics[key] = value
	return nil
}

// LogArtifact records the artifact path, or fails with ArtifactErr.
func (r *FakeRun) LogArtifact(_ context.Context, path string) error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	if r.tracker.ArtifactErr != nil {
		return r.tracker.ArtifactErr
	}
	r.Artifacts = append(r.Artifacts, path)
	return nil
}

// End marks the run finished, or fails with EndErr.
func (r *FakeRun) End(_ context.Context) error {
	r.tracker.mu.Lock()
	defer r.tracker.mu.Unlock()
	if r.tracker.EndErr != nil {
		return r.tracker.EndErr
	}
	r.Ended = true
	return nil
}
