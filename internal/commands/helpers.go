// Package commands implements the modelyard CLI subcommands.
package commands

import (
	"fmt"
	"path/filepath"

	"github.com/modelyard/modelyard/internal/notify"
	"github.com/modelyard/modelyard/internal/tracking"
	"github.com/modelyard/modelyard/internal/train"
	"github.com/modelyard/modelyard/pkg/types"
)

// newTracker builds the tracking sink selected by the config, honoring the
// MODELYARD_TRACKING_URI override. The local file store lives under
// <root>/mlruns.
func newTracker(cfg *types.ProjectConfig) (tracking.Tracker, error) {
	uri := tracking.ResolveURI(cfg.Tracking.URI)
	tracker, err := tracking.New(uri, filepath.Join(cfg.Root, "mlruns"))
	if err != nil {
		return nil, fmt.Errorf("creating tracker: %w", err)
	}
	return tracker, nil
}

// newPromoter wires a Promoter from the project config, including any
// configured promotion-notification sinks.
func newPromoter(cfg *types.ProjectConfig) (*train.Promoter, error) {
	tracker, err := newTracker(cfg)
	if err != nil {
		return nil, err
	}

	opts := []train.Option{train.WithExperiment(cfg.Tracking.Experiment)}
	if len(cfg.Notifications) > 0 {
		dispatcher, err := notify.NewDispatcher(cfg.Notifications, nil)
		if err != nil {
			return nil, fmt.Errorf("creating notification dispatcher: %w", err)
		}
		opts = append(opts, train.WithNotifier(dispatcher.NotifyFunc()))
	}

	return train.New(cfg.Root, cfg.Dataset, tracker, opts...), nil
}
