package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modelyard/modelyard/internal/config"
	"github.com/modelyard/modelyard/pkg/types"
)

const retrainTimeout = 5 * time.Minute

// NewRetrainCmd creates the retrain command.
func NewRetrainCmd() *cobra.Command {
	var (
		trainer   string
		modelType string
		yValue    float64
	)

	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Train a model and promote it to production",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrain(trainer, modelType, yValue, cmd.Flags().Changed("y-value"))
		},
	}

	cmd.Flags().StringVar(&trainer, "trainer", "", "who is triggering this training run (required)")
	cmd.Flags().StringVar(&modelType, "model-type", "", "model variant: constant or mean")
	cmd.Flags().Float64Var(&yValue, "y-value", 0, "constant prediction value (constant model only)")
	_ = cmd.MarkFlagRequired("trainer")
	return cmd
}

func runRetrain(trainer, modelType string, yValue float64, yValueSet bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	promoter, err := newPromoter(cfg)
	if err != nil {
		return err
	}

	req := types.RetrainRequest{
		Trainer:   trainer,
		ModelType: cfg.Model.DefaultType,
		YValue:    cfg.Model.DefaultYValue,
	}
	if modelType != "" {
		req.ModelType = types.ModelType(modelType)
	}
	if yValueSet {
		req.YValue = yValue
	}

	ctx, cancel := context.WithTimeout(context.Background(), retrainTimeout)
	defer cancel()

	rec, err := promoter.TrainAndPromote(ctx, req)
	if err != nil {
		return fmt.Errorf("retrain failed: %w", err)
	}

	color.Green("✓ Promoted %s model to production", rec.ModelType)
	printRecord(rec)
	return nil
}

func printRecord(rec types.ProductionRecord) {
	bold := color.New(color.Bold)
	_, _ = bold.Println("Production record:")
	fmt.Printf("  run_id:              %s\n", rec.RunID)
	fmt.Printf("  trainer:             %s\n", rec.Trainer)
	fmt.Printf("  model_type:          %s\n", rec.ModelType)
	fmt.Printf("  y_value:             %g\n", rec.YValue)
	fmt.Printf("  n_rows:              %d\n", rec.NRows)
	fmt.Printf("  mean_height_m:       %g\n", rec.MeanHeightM)
	fmt.Printf("  dataset_fingerprint: %s\n", orDash(rec.DatasetFingerprint))
	fmt.Printf("  source_revision:     %s\n", orDash(rec.SourceRevision))
	fmt.Printf("  artifact_path:       %s\n", rec.ArtifactPath)
	fmt.Printf("  promoted_at:         %s\n", rec.PromotedAt)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
