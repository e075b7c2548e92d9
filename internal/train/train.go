// Package train implements the retrain-and-promote workflow: materialize the
// dataset, train the requested model variant, collect provenance, record the
// run with the tracking sink, persist the artifact, and atomically promote
// the new production record.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/modelyard/modelyard/internal/dataset"
	"github.com/modelyard/modelyard/internal/metrics"
	"github.com/modelyard/modelyard/internal/model"
	"github.com/modelyard/modelyard/internal/provenance"
	"github.com/modelyard/modelyard/internal/registry"
	"github.com/modelyard/modelyard/internal/tracking"
	"github.com/modelyard/modelyard/pkg/types"
)

// MaxTrainerLen caps the free-text trainer identity.
const MaxTrainerLen = 200

// Promoter runs retrain-and-promote workflows against one project root.
type Promoter struct {
	root        string
	datasetFile string
	experiment  string
	tracker     tracking.Tracker

	fetcher  dataset.Fetcher
	revision provenance.RevisionSource
	notify   func(context.Context, types.ProductionRecord)
	logger   *slog.Logger
}

// Option configures a Promoter.
type Option func(*Promoter)

// WithFetcher sets a custom dataset fetcher (useful for testing).
func WithFetcher(f dataset.Fetcher) Option {
	return func(p *Promoter) { p.fetcher = f }
}

// WithRevisionSource sets a custom source-control revision source.
func WithRevisionSource(r provenance.RevisionSource) Option {
	return func(p *Promoter) { p.revision = r }
}

// WithExperiment sets the tracking experiment name.
func WithExperiment(name string) Option {
	return func(p *Promoter) {
		if name != "" {
			p.experiment = name
		}
	}
}

// WithNotifier sets a callback invoked after each successful promotion.
func WithNotifier(fn func(context.Context, types.ProductionRecord)) Option {
	return func(p *Promoter) { p.notify = fn }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Promoter) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Promoter for the project root.
func New(root, datasetFile string, tracker tracking.Tracker, opts ...Option) *Promoter {
	p := &Promoter{
		root:        root,
		datasetFile: datasetFile,
		experiment:  types.DefaultExperiment,
		tracker:     tracker,
		fetcher:     dataset.DVC{},
		revision:    provenance.Git{Dir: root},
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// TrainAndPromote runs the full workflow and returns the promoted record.
// Any failure before the registry write leaves the previous production
// record fully intact.
func (p *Promoter) TrainAndPromote(ctx context.Context, req types.RetrainRequest) (types.ProductionRecord, error) {
	rec, err := p.trainAndPromote(ctx, req)
	metrics.RetrainsTotal.Add(1)
	if err != nil {
		metrics.RetrainFailures.Add(1)
		return types.ProductionRecord{}, err
	}
	metrics.PromotionsTotal.Add(1)
	return rec, nil
}

func (p *Promoter) trainAndPromote(ctx context.Context, req types.RetrainRequest) (types.ProductionRecord, error) {
	// Validation happens before any I/O.
	trainer := strings.TrimSpace(req.Trainer)
	if trainer == "" {
		return types.ProductionRecord{}, &types.InvalidArgumentError{Reason: "trainer must be a non-empty string"}
	}
	if len(trainer) > MaxTrainerLen {
		return types.ProductionRecord{}, &types.InvalidArgumentError{
			Reason: fmt.Sprintf("trainer must be at most %d characters", MaxTrainerLen),
		}
	}
	modelType := req.ModelType
	if modelType == "" {
		modelType = types.ModelConstant
	}
	modelType = types.ModelType(strings.ToLower(strings.TrimSpace(string(modelType))))
	if !modelType.Valid() {
		return types.ProductionRecord{}, &types.InvalidArgumentError{
			Reason: fmt.Sprintf("model_type must be either %q or %q", types.ModelConstant, types.ModelMean),
		}
	}

	paths, err := registry.EnsureDirs(p.root)
	if err != nil {
		return types.ProductionRecord{}, err
	}

	dataPath, err := dataset.Materialize(ctx, p.root, p.datasetFile, p.fetcher)
	if err != nil {
		return types.ProductionRecord{}, err
	}
	heights, err := dataset.LoadHeights(dataPath)
	if err != nil {
		return types.ProductionRecord{}, err
	}
	nRows := len(heights)
	meanHeight := dataset.Mean(heights)

	facts := provenance.Collect(ctx, p.root, p.datasetFile, p.revision)

	run, err := p.tracker.StartRun(ctx, p.experiment)
	if err != nil {
		metrics.TrackingFailures.Add(1)
		return types.ProductionRecord{}, &types.TrackingUnavailableError{Err: err}
	}

	effectiveY := req.YValue
	if modelType == types.ModelMean {
		effectiveY = meanHeight
	}
	m, err := model.New(modelType, effectiveY)
	if err != nil {
		return types.ProductionRecord{}, err
	}

	artifactPath := paths.ArtifactFile()
	if err := model.Save(m, artifactPath); err != nil {
		return types.ProductionRecord{}, err
	}

	if err := p.recordRun(ctx, run, req, trainer, modelType, facts, nRows, meanHeight, artifactPath); err != nil {
		metrics.TrackingFailures.Add(1)
		return types.ProductionRecord{}, &types.TrackingUnavailableError{Err: err}
	}

	rec := types.ProductionRecord{
		ArtifactPath:       registry.ArtifactRelPath,
		DatasetFingerprint: facts.DatasetFingerprint,
		MeanHeightM:        meanHeight,
		ModelType:          modelType,
		NRows:              nRows,
		PromotedAt:         nowUTC(),
		RunID:              run.ID(),
		SourceRevision:     facts.SourceRevision,
		Trainer:            trainer,
		YValue:             effectiveY,
	}

	if _, err := registry.WriteCurrent(rec, p.root); err != nil {
		return types.ProductionRecord{}, fmt.Errorf("promoting production record: %w", err)
	}

	// Best-effort relative to the pointer update: a failed append never
	// rolls back a successful promotion.
	entry := types.RetrainLogEntry{ProductionRecord: rec, LoggedAt: nowUTC()}
	if _, err := registry.AppendLog(entry, p.root); err != nil {
		p.logger.Error("failed to append retrain log", "run_id", rec.RunID, "error", err)
	}

	p.logger.Info("promoted production model",
		"run_id", rec.RunID, "model_type", rec.ModelType, "trainer", rec.Trainer,
		"n_rows", rec.NRows, "y_value", rec.YValue)

	if p.notify != nil {
		p.notify(ctx, rec)
	}

	return rec, nil
}

// recordRun records parameters, metrics and the artifact with the tracking
// run, then closes it.
func (p *Promoter) recordRun(
	ctx context.Context,
	run tracking.Run,
	req types.RetrainRequest,
	trainer string,
	modelType types.ModelType,
	facts provenance.Facts,
	nRows int,
	meanHeight float64,
	artifactPath string,
) error {
	params := [][2]string{
		{"model_type", string(modelType)},
		{"trainer", trainer},
		{"dataset_fingerprint", facts.DatasetFingerprint},
		{"source_revision", facts.SourceRevision},
	}
	if modelType == types.ModelConstant {
		params = append(params, [2]string{"y_value", strconv.FormatFloat(req.YValue, 'g', -1, 64)})
	}
	for _, kv := range params {
		if err := run.LogParam(ctx, kv[0], kv[1]); err != nil {
			return err
		}
	}
	if err := run.LogMetric(ctx, "n_rows", float64(nRows)); err != nil {
		return err
	}
	if err := run.LogMetric(ctx, "mean_height_m", meanHeight); err != nil {
		return err
	}
	if err := run.LogArtifact(ctx, artifactPath); err != nil {
		return err
	}
	return run.End(ctx)
}

func nowUTC() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
