package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

const remoteTimeout = 10 * time.Second

// Remote records runs on an HTTP tracking server. All calls go through a
// circuit breaker so a down server fails fast instead of stacking up
// timeouts across retrains.
type Remote struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewRemote creates a remote tracker for the given base URL.
func NewRemote(baseURL string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: remoteTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "tracking",
			Timeout: 30 * time.Second,
		}),
	}
}

// Name returns the tracker identifier.
func (t *Remote) Name() string { return "remote" }

// StartRun creates a run on the server.
func (t *Remote) StartRun(ctx context.Context, experiment string) (Run, error) {
	var created struct {
		RunID string `json:"run_id"`
	}
	err := t.postJSON(ctx, "/api/runs", map[string]string{"experiment": experiment}, &created)
	if err != nil {
		return nil, err
	}
	if created.RunID == "" {
		return nil, fmt.Errorf("tracking server returned no run_id")
	}
	return &remoteRun{tracker: t, id: created.RunID}, nil
}

func (t *Remote) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return t.post(ctx, path, "application/json", bytes.NewReader(data), out)
}

func (t *Remote) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	_, err := t.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("tracking server returned status %d", resp.StatusCode)
		}
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return nil, fmt.Errorf("decoding response: %w", err)
			}
		}
		return nil, nil
	})
	return err
}

type remoteRun struct {
	tracker *Remote
	id      string
}

func (r *remoteRun) ID() string { return r.id }

func (r *remoteRun) LogParam(ctx context.Context, key, value string) error {
	return r.tracker.postJSON(ctx, "/api/runs/"+r.id+"/params", map[string]string{"key": key, "value": value}, nil)
}

func (r *remoteRun) LogMetric(ctx context.Context, key string, value float64) error {
	return r.tracker.postJSON(ctx, "/api/runs/"+r.id+"/metrics", map[string]any{"key": key, "value": value}, nil)
}

func (r *remoteRun) LogArtifact(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("building upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("building upload: %w", err)
	}

	return r.tracker.post(ctx, "/api/runs/"+r.id+"/artifacts", w.FormDataContentType(), &buf, nil)
}

func (r *remoteRun) End(ctx context.Context) error {
	return r.tracker.postJSON(ctx, "/api/runs/"+r.id+"/end", map[string]string{}, nil)
}
