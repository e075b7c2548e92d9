package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURIEnvOverride(t *testing.T) {
	t.Setenv(EnvTrackingURI, "http://tracking.internal:5000")
	assert.Equal(t, "http://tracking.internal:5000", ResolveURI("file:./mlruns"))
}

func TestResolveURIConfigured(t *testing.T) {
	t.Setenv(EnvTrackingURI, "")
	assert.Equal(t, "file:./mlruns", ResolveURI("file:./mlruns"))
}

func TestNewSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	tr, err := New("", dir)
	require.NoError(t, err)
	assert.Equal(t, "file", tr.Name())

	tr, err = New("file:"+dir, dir)
	require.NoError(t, err)
	assert.Equal(t, "file", tr.Name())

	tr, err = New("http://localhost:5000", dir)
	require.NoError(t, err)
	assert.Equal(t, "remote", tr.Name())

	_, err = New("ftp://nope", dir)
	require.Error(t, err)
}

func TestFileStoreRun(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "family-heights")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID())

	require.NoError(t, run.LogParam(ctx, "model_type", "mean"))
	require.NoError(t, run.LogMetric(ctx, "n_rows", 2))

	artifact := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(artifact, []byte(`{"model_type":"mean","value":1.75}`), 0o644))
	require.NoError(t, run.LogArtifact(ctx, artifact))
	require.NoError(t, run.End(ctx))

	runDir := filepath.Join(dir, "family-heights", run.ID())

	param, err := os.ReadFile(filepath.Join(runDir, "params", "model_type"))
	require.NoError(t, err)
	assert.Equal(t, "mean\n", string(param))

	metric, err := os.ReadFile(filepath.Join(runDir, "metrics", "n_rows"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(metric)), " 2"))

	copied, err := os.ReadFile(filepath.Join(runDir, "artifacts", "model.json"))
	require.NoError(t, err)
	assert.Contains(t, string(copied), `"mean"`)

	meta, err := os.ReadFile(filepath.Join(runDir, "meta.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(meta), "status: FINISHED")
	assert.Contains(t, string(meta), "run_id: "+run.ID())
}

func TestFileStoreDistinctRunIDs(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	first, err := store.StartRun(ctx, "exp")
	require.NoError(t, err)
	second, err := store.StartRun(ctx, "exp")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestRemoteRun(t *testing.T) {
	var gotPaths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPaths = append(gotPaths, r.URL.Path)
		if r.URL.Path == "/api/runs" {
			_ = json.NewEncoder(w).Encode(map[string]string{"run_id": "run-42"})
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	remote := NewRemote(ts.URL + "/")
	ctx := context.Background()

	run, err := remote.StartRun(ctx, "family-heights")
	require.NoError(t, err)
	assert.Equal(t, "run-42", run.ID())

	require.NoError(t, run.LogParam(ctx, "trainer", "alice"))
	require.NoError(t, run.LogMetric(ctx, "mean_height_m", 1.75))

	artifact := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(artifact, []byte("{}"), 0o644))
	require.NoError(t, run.LogArtifact(ctx, artifact))
	require.NoError(t, run.End(ctx))

	assert.Equal(t, []string{
		"/api/runs",
		"/api/runs/run-42/params",
		"/api/runs/run-42/metrics",
		"/api/runs/run-42/artifacts",
		"/api/runs/run-42/end",
	}, gotPaths)
}

func TestRemoteServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewRemote(ts.URL).StartRun(context.Background(), "exp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestRemoteBreakerOpensAfterFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	remote := NewRemote(ts.URL)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := remote.StartRun(ctx, "exp")
		require.Error(t, err)
	}

	// Once the breaker is open the failure comes from the breaker itself,
	// without reaching the server.
	_, err := remote.StartRun(ctx, "exp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}
