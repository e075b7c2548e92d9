package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelyard/modelyard/internal/config"
	"github.com/modelyard/modelyard/internal/notify"
	"github.com/modelyard/modelyard/internal/registry"
	"github.com/modelyard/modelyard/internal/serving"
	"github.com/modelyard/modelyard/internal/testutil"
	"github.com/modelyard/modelyard/internal/tracking"
	"github.com/modelyard/modelyard/internal/train"
	"github.com/modelyard/modelyard/pkg/types"
)

// TestFullLifecycle exercises the whole system against a real project root:
// config load, two retrains through the file-based tracker, serving refresh,
// the audit log, and the polling refresher picking up a promotion made by a
// separate promoter, the way a CLI retrain lands while the server runs.
func TestFullLifecycle(t *testing.T) {
	root := t.TempDir()

	configYAML := `dataset: family_heights.csv
tracking:
  experiment: integration
model:
  defaultType: constant
  defaultYValue: 1.5
refresher:
  enabled: true
  interval: 20ms
`
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigFileName), []byte(configYAML), 0o644))

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "integration", cfg.Tracking.Experiment)

	testutil.WriteDataset(t, root, cfg.Dataset, "member,height_cm\nmother,162\nfather,178\n")
	testutil.WritePointer(t, root, cfg.Dataset, "abc123")

	tracker := tracking.NewFileStore(filepath.Join(root, "mlruns"))
	promoter := train.New(cfg.Root, cfg.Dataset, tracker,
		train.WithExperiment(cfg.Tracking.Experiment),
		train.WithRevisionSource(testutil.StaticRevision("cafe01")),
	)

	ctx := context.Background()

	// First retrain: constant model with the configured default.
	first, err := promoter.TrainAndPromote(ctx, types.RetrainRequest{
		Trainer: "alice",
		YValue:  cfg.Model.DefaultYValue,
	})
	require.NoError(t, err)
	assert.Equal(t, types.ModelConstant, first.ModelType)
	assert.Equal(t, 1.5, first.YValue)
	assert.Equal(t, 2, first.NRows)
	assert.Equal(t, "abc123", first.DatasetFingerprint)
	assert.Equal(t, "cafe01", first.SourceRevision)

	// The tracker left a run directory behind.
	runDir := filepath.Join(root, "mlruns", "integration", first.RunID)
	_, err = os.Stat(filepath.Join(runDir, "params", "model_type"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(runDir, "artifacts", "model.json"))
	require.NoError(t, err)

	// Serving picks it up on refresh.
	state := serving.New(cfg.Root, nil)
	state.Refresh()
	require.Equal(t, types.ServingReady, state.Snapshot().Status)

	y, meta, err := state.Predict(175)
	require.NoError(t, err)
	assert.Equal(t, 1.5, y)
	assert.Equal(t, first.RunID, meta.RunID)

	// Second retrain lands from a separate promoter, as the CLI would; the
	// running refresher must notice the pointer change on its own.
	refresher := serving.NewRefresher(state, cfg.Root, config.RefreshInterval(cfg), nil)
	refresher.Start(ctx)
	defer refresher.Stop(ctx)

	dispatcher, err := notify.NewDispatcher([]types.NotifyConfig{
		{Type: types.NotifyFile, Path: filepath.Join(root, "promotions.jsonl")},
	}, nil)
	require.NoError(t, err)

	cliPromoter := train.New(cfg.Root, cfg.Dataset, tracker,
		train.WithExperiment(cfg.Tracking.Experiment),
		train.WithRevisionSource(testutil.StaticRevision("cafe02")),
		train.WithNotifier(dispatcher.NotifyFunc()),
	)
	second, err := cliPromoter.TrainAndPromote(ctx, types.RetrainRequest{
		Trainer:   "bob",
		ModelType: types.ModelMean,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.70, second.MeanHeightM, 1e-9)
	assert.NotEqual(t, first.RunID, second.RunID)

	require.Eventually(t, func() bool {
		_, meta, err := state.Predict(175)
		return err == nil && meta.RunID == second.RunID
	}, 2*time.Second, 10*time.Millisecond)

	y, _, err = state.Predict(175)
	require.NoError(t, err)
	assert.InDelta(t, 1.70, y, 1e-9)

	// Both promotions are in the audit log in order, and the notification
	// sink saw the second one.
	entries, err := registry.ReadLog(cfg.Root, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.RunID, entries[0].RunID)
	assert.Equal(t, second.RunID, entries[1].RunID)

	data, err := os.ReadFile(filepath.Join(root, "promotions.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), second.RunID)
}
