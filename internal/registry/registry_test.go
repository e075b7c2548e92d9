package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelyard/modelyard/pkg/types"
)

func sampleRecord() types.ProductionRecord {
	return types.ProductionRecord{
		ArtifactPath:       "models/production/model.json",
		DatasetFingerprint: "d41d8cd98f00b204e9800998ecf8427e",
		MeanHeightM:        1.75,
		ModelType:          types.ModelMean,
		NRows:              2,
		PromotedAt:         "2026-03-01T12:00:00Z",
		RunID:              "01JXYZABCDEF",
		SourceRevision:     "abc123",
		Trainer:            "alice",
		YValue:             1.75,
	}
}

func TestEnsureDirsIdempotent(t *testing.T) {
	root := t.TempDir()

	first, err := EnsureDirs(root)
	require.NoError(t, err)

	// Calling again must not fail or change the directory set.
	second, err := EnsureDirs(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, dir := range []string{first.Metadata, first.ProductionModelDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirsPreservesContent(t *testing.T) {
	root := t.TempDir()

	paths, err := EnsureDirs(root)
	require.NoError(t, err)
	marker := filepath.Join(paths.Metadata, "marker")
	require.NoError(t, os.WriteFile(marker, []byte("keep"), 0o644))

	_, err = EnsureDirs(root)
	require.NoError(t, err)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	rec := sampleRecord()

	path, err := WriteCurrent(rec, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "metadata", ProductionFileName), path)

	got := ReadCurrent(root)
	assert.Equal(t, rec, got)
}

func TestWriteCurrentFormat(t *testing.T) {
	root := t.TempDir()

	path, err := WriteCurrent(sampleRecord(), root)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	raw := string(data)

	// Pretty-printed, trailing newline, deterministic (alphabetical) keys.
	assert.True(t, strings.HasSuffix(raw, "\n"))
	assert.Contains(t, raw, "  \"artifact_path\"")
	keys := []string{
		"artifact_path", "dataset_fingerprint", "mean_height_m", "model_type",
		"n_rows", "promoted_at", "run_id", "source_revision", "trainer", "y_value",
	}
	last := -1
	for _, k := range keys {
		idx := strings.Index(raw, `"`+k+`"`)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", k)
		assert.Greater(t, idx, last, "key %s out of order", k)
		last = idx
	}
}

func TestWriteCurrentLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()

	_, err := WriteCurrent(sampleRecord(), root)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "metadata"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestReadCurrentMissingOrEmptyOrCorrupt(t *testing.T) {
	root := t.TempDir()

	// Missing file.
	assert.True(t, ReadCurrent(root).IsZero())

	paths, err := EnsureDirs(root)
	require.NoError(t, err)

	// Empty file.
	require.NoError(t, os.WriteFile(paths.ProductionFile(), []byte("  \n"), 0o644))
	assert.True(t, ReadCurrent(root).IsZero())

	// Corrupt file.
	require.NoError(t, os.WriteFile(paths.ProductionFile(), []byte("{not json"), 0o644))
	assert.True(t, ReadCurrent(root).IsZero())
}

func TestCrashBeforeRenameLeavesPriorRecord(t *testing.T) {
	root := t.TempDir()
	prior := sampleRecord()

	_, err := WriteCurrent(prior, root)
	require.NoError(t, err)

	// Simulate a crash between temp-file write and rename: a half-written
	// temp file sits next to the target but was never renamed onto it.
	paths, err := EnsureDirs(root)
	require.NoError(t, err)
	tmp := filepath.Join(paths.Metadata, "production.crashed.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"trainer":"mallo`), 0o644))

	got := ReadCurrent(root)
	assert.Equal(t, prior, got)
}

func TestSecondPromotionSupersedesFirst(t *testing.T) {
	root := t.TempDir()

	first := sampleRecord()
	second := sampleRecord()
	second.RunID = "01JXYZSECOND"
	second.Trainer = "bob"
	second.YValue = 2.0

	_, err := WriteCurrent(first, root)
	require.NoError(t, err)
	_, err = AppendLog(types.RetrainLogEntry{ProductionRecord: first, LoggedAt: "2026-03-01T12:00:00Z"}, root)
	require.NoError(t, err)

	_, err = WriteCurrent(second, root)
	require.NoError(t, err)
	_, err = AppendLog(types.RetrainLogEntry{ProductionRecord: second, LoggedAt: "2026-03-01T13:00:00Z"}, root)
	require.NoError(t, err)

	assert.Equal(t, second, ReadCurrent(root))

	entries, err := ReadLog(root, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first, entries[0].ProductionRecord)
	assert.Equal(t, second, entries[1].ProductionRecord)
}

func TestAppendLogIsAppendOnly(t *testing.T) {
	root := t.TempDir()
	rec := sampleRecord()

	path, err := AppendLog(types.RetrainLogEntry{ProductionRecord: rec, LoggedAt: "2026-03-01T12:00:00Z"}, root)
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = AppendLog(types.RetrainLogEntry{ProductionRecord: rec, LoggedAt: "2026-03-01T13:00:00Z"}, root)
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)

	// The first line is untouched and one JSON line was added.
	assert.True(t, strings.HasPrefix(string(after), string(before)))
	lines := strings.Split(strings.TrimSpace(string(after)), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var e types.RetrainLogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		assert.Equal(t, rec, e.ProductionRecord)
	}
}

func TestReadLogLimit(t *testing.T) {
	root := t.TempDir()

	for i, trainer := range []string{"a", "b", "c"} {
		rec := sampleRecord()
		rec.Trainer = trainer
		_, err := AppendLog(types.RetrainLogEntry{ProductionRecord: rec, LoggedAt: "2026-03-01T12:00:0" + string(rune('0'+i)) + "Z"}, root)
		require.NoError(t, err)
	}

	entries, err := ReadLog(root, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Trainer)
	assert.Equal(t, "c", entries[1].Trainer)
}

func TestReadLogMissingFile(t *testing.T) {
	entries, err := ReadLog(t.TempDir(), 0)
	require.NoError(t, err)
	assert.Nil(t, entries)
}
