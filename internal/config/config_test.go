package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelyard/modelyard/pkg/types"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, DefaultDataset, cfg.Dataset)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, types.ModelConstant, cfg.Model.DefaultType)
	assert.Equal(t, DefaultYValue, cfg.Model.DefaultYValue)
	assert.Equal(t, types.DefaultExperiment, cfg.Tracking.Experiment)
	assert.True(t, cfg.Refresher.Enabled)
}

func TestLoadFullConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `dataset: heights.csv
server:
  addr: ":8080"
  apiKey: secret
  maxRequestBody: 4096
tracking:
  uri: http://tracking:5000
  experiment: heights-prod
model:
  defaultType: mean
refresher:
  enabled: true
  interval: 5s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "heights.csv", cfg.Dataset)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, int64(4096), cfg.Server.MaxRequestBody)
	assert.Equal(t, "http://tracking:5000", cfg.Tracking.URI)
	assert.Equal(t, "heights-prod", cfg.Tracking.Experiment)
	assert.Equal(t, types.ModelMean, cfg.Model.DefaultType)
	assert.Equal(t, int64(5e9), int64(RefreshInterval(cfg)))
}

func TestLoadRelativeRoot(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "root: project\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "project"), cfg.Root)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataset: [unclosed\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestValidateModelType(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "model:\n  defaultType: oracle\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model.defaultType")
}

func TestValidateDatasetIsBareName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "dataset: ../../etc/passwd\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bare file name")
}

func TestValidateRefresherInterval(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "refresher:\n  enabled: true\n  interval: soon\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresher.interval")
}
