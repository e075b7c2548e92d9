package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modelyard/modelyard/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "modelyard",
		Short: "Traceable model training, registry, and serving",
		Long: `Modelyard trains toy height models against a DVC-versioned dataset,
records every run in an experiment tracker, and promotes exactly one model to
production at a time. The production pointer and append-only retrain log give
full provenance for whatever is currently serving predictions.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewRetrainCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
