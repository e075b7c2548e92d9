package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDataset indicates the dataset parsed cleanly but contained zero
// valid target values.
var ErrEmptyDataset = errors.New("dataset contained 0 valid height values")

// InvalidArgumentError is a client mistake detected before any I/O.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

// DatasetNotFoundError indicates neither the dataset file nor its
// version-control pointer exists.
type DatasetNotFoundError struct {
	Path        string
	PointerPath string
}

func (e *DatasetNotFoundError) Error() string {
	return fmt.Sprintf("dataset not found and no DVC pointer present: %s (and %s)", e.Path, e.PointerPath)
}

// DatasetUnavailableError indicates the dataset could not be materialized
// from its version-control pointer. Output carries the external tool's
// captured stdout/stderr for diagnosis.
type DatasetUnavailableError struct {
	Output string
	Err    error
}

func (e *DatasetUnavailableError) Error() string {
	msg := "failed to materialize dataset"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\noutput:\n" + e.Output
	}
	return msg
}

func (e *DatasetUnavailableError) Unwrap() error { return e.Err }

// MissingHeightColumnError indicates the dataset header has none of the
// recognized height columns. Like the other data-quality errors it is a
// client-fixable problem, not a server fault.
type MissingHeightColumnError struct {
	Columns []string
}

func (e *MissingHeightColumnError) Error() string {
	return fmt.Sprintf("dataset is missing a height column; expected one of: %s", strings.Join(e.Columns, ", "))
}

// InvalidRowError names the offending data row and raw value when the
// dataset contains a non-numeric target entry. Row is 1-based, counting data
// rows after the header.
type InvalidRowError struct {
	Row   int
	Value string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("invalid height value on data row %d: %q", e.Row, e.Value)
}

// TrackingUnavailableError indicates the experiment-tracking service failed.
// Losing the experiment record breaks the traceability guarantee, so this
// fails the whole retrain.
type TrackingUnavailableError struct {
	Err error
}

func (e *TrackingUnavailableError) Error() string {
	return "experiment tracking unavailable: " + e.Err.Error()
}

func (e *TrackingUnavailableError) Unwrap() error { return e.Err }

// ModelUnavailableError indicates no production model is loadable on the
// serving side. Reason distinguishes "not yet trained" from "load failed".
type ModelUnavailableError struct {
	Reason string
}

func (e *ModelUnavailableError) Error() string { return e.Reason }
