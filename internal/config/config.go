// Package config handles loading and validation of modelyard.yaml project
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/modelyard/modelyard/pkg/types"
)

// ConfigFileName is the project configuration file looked up in the project
// directory.
const ConfigFileName = "modelyard.yaml"

// Defaults applied when modelyard.yaml omits a value.
const (
	DefaultDataset = "family_heights.csv"
	DefaultAddr    = ":3000"
	DefaultYValue  = 1.5
)

// Load reads and parses modelyard.yaml from the given directory. A missing
// file yields the default configuration, so a bare project directory works
// out of the box.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, ConfigFileName)

	var cfg types.ProjectConfig
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyDefaults(&cfg, dir)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *types.ProjectConfig, dir string) {
	if cfg.Root == "" {
		cfg.Root = dir
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(dir, cfg.Root)
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultDataset
	}
	if cfg.Server == nil {
		cfg.Server = &types.ServerConfig{}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Tracking == nil {
		cfg.Tracking = &types.TrackingConfig{}
	}
	if cfg.Tracking.Experiment == "" {
		cfg.Tracking.Experiment = types.DefaultExperiment
	}
	if cfg.Model == nil {
		cfg.Model = &types.ModelDefaults{}
	}
	if cfg.Model.DefaultType == "" {
		cfg.Model.DefaultType = types.ModelConstant
	}
	if cfg.Model.DefaultYValue == 0 {
		cfg.Model.DefaultYValue = DefaultYValue
	}
	if cfg.Refresher == nil {
		cfg.Refresher = &types.RefresherConfig{Enabled: true}
	}
}

func validate(cfg *types.ProjectConfig) error {
	if !cfg.Model.DefaultType.Valid() {
		return fmt.Errorf("model.defaultType must be either %q or %q", types.ModelConstant, types.ModelMean)
	}
	if strings.ContainsAny(cfg.Dataset, "/\\") {
		return fmt.Errorf("dataset must be a bare file name, not a path: %q", cfg.Dataset)
	}
	if cfg.Refresher.Interval != "" {
		d, err := time.ParseDuration(cfg.Refresher.Interval)
		if err != nil || d <= 0 {
			return fmt.Errorf("refresher.interval must be a positive duration: %q", cfg.Refresher.Interval)
		}
	}
	if cfg.Server.MaxRequestBody < 0 {
		return fmt.Errorf("server.maxRequestBody must be non-negative")
	}
	return nil
}

// RefreshInterval returns the configured refresher interval, or zero when
// unset (callers fall back to their own default).
func RefreshInterval(cfg *types.ProjectConfig) time.Duration {
	if cfg.Refresher == nil || cfg.Refresher.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(cfg.Refresher.Interval)
	if err != nil {
		return 0
	}
	return d
}
