// Package dataset materializes the version-controlled training dataset and
// loads it into normalized target values.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/modelyard/modelyard/pkg/types"
)

// heightColumns is the fixed priority order for the target column; the first
// match wins.
var heightColumns = []string{"height_cm", "height_m", "height"}

// cmThreshold is the unit-detection boundary: a maximum observed value
// strictly greater than this is treated as centimeters and rescaled to
// meters. Values at or below it are assumed to already be meters.
const cmThreshold = 10.0

// Fetcher materializes a dataset file from its version-control pointer. It
// returns the external tool's combined output for diagnosis on failure.
type Fetcher interface {
	Fetch(ctx context.Context, root, relPath string) (output string, err error)
}

// DVC fetches datasets by shelling out to `dvc pull`.
type DVC struct{}

// Fetch runs `dvc pull <relPath>` in the project root.
func (DVC) Fetch(ctx context.Context, root, relPath string) (string, error) {
	cmd := exec.CommandContext(ctx, "dvc", "pull", relPath)
	cmd.Dir = root
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Materialize ensures the raw dataset file exists under root/data and
// returns its path. If the file is missing but a .dvc pointer exists, the
// fetcher is invoked; a failed or ineffective fetch yields a
// DatasetUnavailableError carrying the captured tool output. With neither
// file nor pointer present it fails with DatasetNotFoundError.
func Materialize(ctx context.Context, root, fileName string, fetcher Fetcher) (string, error) {
	csvPath := filepath.Join(root, "data", fileName)
	pointerPath := csvPath + ".dvc"

	if _, err := os.Stat(csvPath); err == nil {
		return csvPath, nil
	}

	if _, err := os.Stat(pointerPath); err != nil {
		return "", &types.DatasetNotFoundError{Path: csvPath, PointerPath: pointerPath}
	}

	relPath := filepath.ToSlash(filepath.Join("data", fileName))
	output, err := fetcher.Fetch(ctx, root, relPath)
	if err != nil {
		return "", &types.DatasetUnavailableError{Output: output, Err: err}
	}
	if _, err := os.Stat(csvPath); err != nil {
		return "", &types.DatasetUnavailableError{
			Output: output,
			Err:    fmt.Errorf("fetch reported success but %s is still missing", csvPath),
		}
	}
	return csvPath, nil
}

// LoadHeights reads the dataset CSV and returns target values normalized to
// meters. The target column is chosen by fixed priority (height_cm,
// height_m, height); blank cells are skipped; a non-numeric cell fails with
// InvalidRowError naming the 1-based data row; zero valid values fail with
// ErrEmptyDataset. If the maximum observed value exceeds 10 the column is
// treated as centimeters and every value is divided by 100.
func LoadHeights(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset has no header row: %w", err)
	}

	col := -1
	for _, want := range heightColumns {
		for i, name := range header {
			if strings.TrimSpace(name) == want {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, &types.MissingHeightColumnError{Columns: heightColumns}
	}

	var raw []float64
	row := 0
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		row++
		if col >= len(record) {
			continue
		}
		cell := strings.TrimSpace(record[col])
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, &types.InvalidRowError{Row: row, Value: cell}
		}
		raw = append(raw, v)
	}

	if len(raw) == 0 {
		return nil, types.ErrEmptyDataset
	}

	max := raw[0]
	for _, v := range raw[1:] {
		if v > max {
			max = v
		}
	}
	if max > cmThreshold {
		heights := make([]float64, len(raw))
		for i, v := range raw {
			heights[i] = v / 100.0
		}
		return heights, nil
	}
	return raw, nil
}

// Mean returns the arithmetic mean of values. It assumes a non-empty slice,
// which LoadHeights guarantees.
func Mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
