package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modelyard/modelyard/internal/config"
	"github.com/modelyard/modelyard/internal/registry"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the production model and recent retrains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(recent)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 5, "number of recent retrains to show")
	return cmd
}

func runStatus(recent int) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rec := registry.ReadCurrent(cfg.Root)
	if rec.IsZero() {
		color.Yellow("No production model. Run `modelyard retrain --trainer <name>` to create one.")
		return nil
	}

	color.Green("Production: READY ✓")
	printRecord(rec)

	entries, err := registry.ReadLog(cfg.Root, recent)
	if err != nil {
		return fmt.Errorf("reading retrain log: %w", err)
	}
	if len(entries) > 0 {
		fmt.Println()
		bold := color.New(color.Bold)
		_, _ = bold.Println("Recent retrains:")
		for _, e := range entries {
			marker := " "
			if e.RunID == rec.RunID {
				marker = color.GreenString("*")
			}
			fmt.Printf("  %s %-28s %-8s trainer=%-12s rows=%-5d %s\n",
				marker, e.RunID, e.ModelType, e.Trainer, e.NRows, e.PromotedAt)
		}
	}
	fmt.Println()
	return nil
}
