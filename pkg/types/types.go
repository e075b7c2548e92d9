// Package types defines the public domain types for the modelyard traceable
// model registry.
package types

// DefaultExperiment is the tracking experiment used when none is configured.
const DefaultExperiment = "family-heights"

// ModelType selects which model variant is trained and promoted.
type ModelType string

// ModelType values enumerate the supported model variants.
const (
	ModelConstant ModelType = "constant"
	ModelMean     ModelType = "mean"
)

// Valid reports whether the model type is a member of the closed enumeration.
func (m ModelType) Valid() bool {
	return m == ModelConstant || m == ModelMean
}

// ServingStatus represents the state of the in-process serving view.
type ServingStatus string

// ServingStatus values. Every refresh re-evaluates from scratch; no status is
// sticky across refreshes.
const (
	ServingUninitialized ServingStatus = "UNINITIALIZED"
	ServingNoModel       ServingStatus = "NO_MODEL"
	ServingReady         ServingStatus = "READY"
	ServingLoadFailed    ServingStatus = "LOAD_FAILED"
)

// ProductionRecord is the single source of truth for what is live. It is
// fully replaced on each promotion, never partially mutated. Fields are
// declared in alphabetical JSON-tag order so the marshaled document has
// deterministic key ordering.
type ProductionRecord struct {
	ArtifactPath       string    `json:"artifact_path"`
	DatasetFingerprint string    `json:"dataset_fingerprint"`
	MeanHeightM        float64   `json:"mean_height_m"`
	ModelType          ModelType `json:"model_type"`
	NRows              int       `json:"n_rows"`
	PromotedAt         string    `json:"promoted_at"`
	RunID              string    `json:"run_id"`
	SourceRevision     string    `json:"source_revision"`
	Trainer            string    `json:"trainer"`
	YValue             float64   `json:"y_value"`
}

// IsZero reports whether the record is the "no production yet" signal.
func (r ProductionRecord) IsZero() bool {
	return r.RunID == "" && r.ArtifactPath == "" && r.Trainer == ""
}

// RetrainLogEntry is a promoted record plus the time it was appended to the
// audit log. Entries are append-only and immutable once written.
type RetrainLogEntry struct {
	ProductionRecord
	LoggedAt string `json:"logged_at"`
}

// RetrainRequest carries the inputs of a retrain-and-promote run.
type RetrainRequest struct {
	Trainer   string    `json:"trainer"`
	ModelType ModelType `json:"model_type,omitempty"`
	YValue    float64   `json:"y_value,omitempty"`
}
