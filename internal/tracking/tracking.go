// Package tracking records training runs to an experiment-tracking sink.
// The local registry does not depend on the sink's storage, but a failed
// recording fails the retrain: the experiment record is a promised
// traceability guarantee.
package tracking

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvTrackingURI overrides the configured tracking URI when set.
const EnvTrackingURI = "MODELYARD_TRACKING_URI"

// Tracker starts experiment runs.
type Tracker interface {
	StartRun(ctx context.Context, experiment string) (Run, error)
	Name() string
}

// Run is one experiment run acting as an opaque provenance sink.
type Run interface {
	ID() string
	LogParam(ctx context.Context, key, value string) error
	LogMetric(ctx context.Context, key string, value float64) error
	LogArtifact(ctx context.Context, path string) error
	End(ctx context.Context) error
}

// ResolveURI returns the effective tracking URI: the environment override
// when present, otherwise the configured value.
func ResolveURI(configured string) string {
	if env := os.Getenv(EnvTrackingURI); env != "" {
		return env
	}
	return configured
}

// New creates the tracker selected by uri. An empty uri or a "file:" uri
// selects the local file store (defaulting to localDir); "http" and "https"
// select the remote tracking server.
func New(uri, localDir string) (Tracker, error) {
	switch {
	case uri == "":
		return NewFileStore(localDir), nil
	case strings.HasPrefix(uri, "file:"):
		dir := strings.TrimPrefix(uri, "file:")
		dir = strings.TrimPrefix(dir, "//")
		if dir == "" {
			dir = localDir
		}
		return NewFileStore(dir), nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return NewRemote(uri), nil
	default:
		return nil, fmt.Errorf("unsupported tracking URI %q", uri)
	}
}
