package tracking

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// FileStore is a local file-backed tracking sink, one directory per run.
// This is the default when no tracking server is configured.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Name returns the tracker identifier.
func (s *FileStore) Name() string { return "file" }

// runMeta is the per-run metadata document.
type runMeta struct {
	RunID      string `yaml:"run_id"`
	Experiment string `yaml:"experiment"`
	Status     string `yaml:"status"`
	StartTime  string `yaml:"start_time"`
	EndTime    string `yaml:"end_time,omitempty"`
}

// StartRun creates a run directory with params/, metrics/ and artifacts/
// subdirectories and a meta.yaml document.
func (s *FileStore) StartRun(_ context.Context, experiment string) (Run, error) {
	id := ulid.Make().String()
	dir := filepath.Join(s.dir, experiment, id)

	for _, sub := range []string{"params", "metrics", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating run directory: %w", err)
		}
	}

	run := &fileRun{id: id, dir: dir}
	meta := runMeta{
		RunID:      id,
		Experiment: experiment,
		Status:     "RUNNING",
		StartTime:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := run.writeMeta(meta); err != nil {
		return nil, err
	}
	run.meta = meta
	return run, nil
}

type fileRun struct {
	id   string
	dir  string
	meta runMeta
}

func (r *fileRun) ID() string { return r.id }

func (r *fileRun) writeMeta(meta runMeta) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling run meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, "meta.yaml"), data, 0o644); err != nil {
		return fmt.Errorf("writing run meta: %w", err)
	}
	return nil
}

// LogParam writes the value to params/<key>.
func (r *fileRun) LogParam(_ context.Context, key, value string) error {
	if err := os.WriteFile(filepath.Join(r.dir, "params", key), []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("logging param %s: %w", key, err)
	}
	return nil
}

// LogMetric appends "<unix-millis> <value>" to metrics/<key>.
func (r *fileRun) LogMetric(_ context.Context, key string, value float64) error {
	path := filepath.Join(r.dir, "metrics", key)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging metric %s: %w", key, err)
	}
	defer func() { _ = f.Close() }()

	line := strconv.FormatInt(time.Now().UnixMilli(), 10) + " " + strconv.FormatFloat(value, 'g', -1, 64) + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("logging metric %s: %w", key, err)
	}
	return nil
}

// LogArtifact copies the file at path into artifacts/.
func (r *fileRun) LogArtifact(_ context.Context, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(r.dir, "artifacts", filepath.Base(path)))
	if err != nil {
		return fmt.Errorf("creating artifact copy: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying artifact: %w", err)
	}
	return nil
}

// End marks the run finished in meta.yaml.
func (r *fileRun) End(_ context.Context) error {
	meta := r.meta
	meta.Status = "FINISHED"
	meta.EndTime = time.Now().UTC().Format(time.RFC3339)
	if err := r.writeMeta(meta); err != nil {
		return err
	}
	r.meta = meta
	return nil
}
