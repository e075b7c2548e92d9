package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteDataset writes a CSV dataset under root/data and returns its path.
func WriteDataset(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WritePointer writes a DVC pointer file for the named dataset.
func WritePointer(t *testing.T, root, name, md5 string) {
	t.Helper()
	dir := filepath.Join(root, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "outs:\n- md5: " + md5 + "\n  path: " + name + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".dvc"), []byte(content), 0o644))
}

// StaticRevision is a RevisionSource returning a fixed SHA.
type StaticRevision string

// Revision returns the fixed SHA.
func (s StaticRevision) Revision(context.Context) (string, error) { return string(s), nil }
