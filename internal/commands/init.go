package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/modelyard/modelyard/internal/config"
	"github.com/modelyard/modelyard/internal/registry"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [project-dir]",
		Short: "Initialize a new modelyard project",
		Long:  "Creates project scaffolding: modelyard.yaml, a sample dataset, and the registry directories.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args[0])
		},
	}
}

func runInit(dir string) error {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("Initializing modelyard project: %s\n", dir)

	if _, err := registry.EnsureDirs(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	configContent := `dataset: family_heights.csv
server:
  addr: ":3000"
tracking:
  uri: ""
  experiment: family-heights
model:
  defaultType: constant
  defaultYValue: 1.5
refresher:
  enabled: true
  interval: 15s
notifications:
  - type: console
`
	if err := writeIfAbsent(configPath, configContent); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	datasetPath := filepath.Join(dir, "data", config.DefaultDataset)
	datasetContent := `member,height_cm
mother,162
father,178
sister,168
brother,183
`
	if err := writeIfAbsent(datasetPath, datasetContent); err != nil {
		return fmt.Errorf("writing sample dataset: %w", err)
	}

	color.Green("  ✓ Project scaffolded")
	fmt.Println("Next steps:")
	fmt.Println("  modelyard retrain --trainer you   # train and promote a first model")
	fmt.Println("  modelyard serve                   # start the API server")
	return nil
}

// writeIfAbsent writes content to path only when the file does not already
// exist, so re-running init never clobbers project files.
func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
