// Package registry implements the durable production-model registry: an
// atomically replaced production pointer plus an append-only retrain log.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelyard/modelyard/pkg/types"
)

const (
	// ProductionFileName is the current-production pointer file under the
	// metadata directory.
	ProductionFileName = "production.json"
	// RetrainLogFileName is the append-only audit log under the metadata
	// directory.
	RetrainLogFileName = "retrain_log.jsonl"
	// ArtifactRelPath is the production model artifact location relative to
	// the project root.
	ArtifactRelPath = "models/production/model.json"
)

// Paths holds the resolved registry directories under a project root.
type Paths struct {
	Root               string
	Metadata           string
	ProductionModelDir string
}

// ProductionFile returns the absolute path of the production pointer.
func (p Paths) ProductionFile() string {
	return filepath.Join(p.Metadata, ProductionFileName)
}

// RetrainLogFile returns the absolute path of the retrain log.
func (p Paths) RetrainLogFile() string {
	return filepath.Join(p.Metadata, RetrainLogFileName)
}

// ArtifactFile returns the absolute path of the production model artifact.
func (p Paths) ArtifactFile() string {
	return filepath.Join(p.Root, filepath.FromSlash(ArtifactRelPath))
}

// EnsureDirs idempotently creates the metadata and production model
// directories under root. Existing content is never touched.
func EnsureDirs(root string) (Paths, error) {
	p := Paths{
		Root:               root,
		Metadata:           filepath.Join(root, "metadata"),
		ProductionModelDir: filepath.Join(root, "models", "production"),
	}
	for _, dir := range []string{p.Metadata, p.ProductionModelDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Paths{}, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return p, nil
}

// ReadCurrent returns the current production record, or the zero record if
// the pointer file is absent, empty, or unparseable. Corruption deliberately
// collapses to "no production yet"; callers never see a read error.
func ReadCurrent(root string) types.ProductionRecord {
	path := filepath.Join(root, "metadata", ProductionFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProductionRecord{}
	}
	if strings.TrimSpace(string(data)) == "" {
		return types.ProductionRecord{}
	}

	var rec types.ProductionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.ProductionRecord{}
	}
	return rec
}

// WriteCurrent atomically persists rec as the new production pointer.
// The record is serialized to a temp file in the metadata directory, forced
// durable, then renamed onto the target, so concurrent readers observe either
// the fully-old or fully-new content. On any failure before the rename the
// temp file is removed and the target is left untouched.
func WriteCurrent(rec types.ProductionRecord, root string) (string, error) {
	paths, err := EnsureDirs(root)
	if err != nil {
		return "", err
	}
	target := paths.ProductionFile()

	payload, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling production record: %w", err)
	}
	payload = append(payload, '\n')

	tmp, err := os.CreateTemp(paths.Metadata, "production.*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("replacing %s: %w", target, err)
	}
	return target, nil
}

// AppendLog appends one JSON line to the retrain log, forcing durability
// before returning. Existing lines are never rewritten. The log is
// best-effort relative to WriteCurrent: a failed append does not roll back a
// prior successful pointer update.
func AppendLog(entry types.RetrainLogEntry, root string) (string, error) {
	paths, err := EnsureDirs(root)
	if err != nil {
		return "", err
	}
	path := paths.RetrainLogFile()

	line, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshaling log entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("opening retrain log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", fmt.Errorf("appending to retrain log: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("syncing retrain log: %w", err)
	}
	return path, nil
}

// ReadLog returns up to limit entries from the retrain log, oldest first.
// A limit <= 0 returns all entries. Unparseable lines are skipped.
func ReadLog(root string, limit int) ([]types.RetrainLogEntry, error) {
	path := filepath.Join(root, "metadata", RetrainLogFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading retrain log: %w", err)
	}

	var entries []types.RetrainLogEntry
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e types.RetrainLogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
