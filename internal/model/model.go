// Package model defines the prediction model variants and their serialized
// artifact format.
package model

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/modelyard/modelyard/pkg/types"
)

// Model is a trained prediction unit. All variants are closed members of the
// types.ModelType enumeration.
type Model interface {
	// Predict returns the predicted target value (meters) for one input
	// height in centimeters.
	Predict(heightCM float64) float64
	// Type returns the variant tag.
	Type() types.ModelType
	// Param returns the effective scalar parameter the variant was
	// configured with.
	Param() float64
}

// Constant always predicts a fixed value, ignoring the input.
type Constant struct {
	YValue float64
}

// Predict returns the configured constant.
func (m Constant) Predict(_ float64) float64 { return m.YValue }

// Type returns the constant variant tag.
func (m Constant) Type() types.ModelType { return types.ModelConstant }

// Param returns the configured constant.
func (m Constant) Param() float64 { return m.YValue }

// Mean predicts the mean target value observed at training time, ignoring
// the input.
type Mean struct {
	MeanValue float64
}

// Predict returns the training-time mean.
func (m Mean) Predict(_ float64) float64 { return m.MeanValue }

// Type returns the mean variant tag.
func (m Mean) Type() types.ModelType { return types.ModelMean }

// Param returns the training-time mean.
func (m Mean) Param() float64 { return m.MeanValue }

// New constructs the variant for the given tag and parameter.
func New(modelType types.ModelType, param float64) (Model, error) {
	switch modelType {
	case types.ModelConstant:
		return Constant{YValue: param}, nil
	case types.ModelMean:
		return Mean{MeanValue: param}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", modelType)
	}
}

// artifact is the on-disk artifact document. The type tag is validated at
// load time; an unknown tag is a load failure, not a crash.
type artifact struct {
	ModelType types.ModelType `json:"model_type"`
	Value     float64         `json:"value"`
}

// Save serializes the model artifact to path, overwriting any prior
// artifact. The replace is not required to be atomic with the registry
// pointer update.
func Save(m Model, path string) error {
	data, err := json.MarshalIndent(artifact{ModelType: m.Type(), Value: m.Param()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model artifact: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing model artifact: %w", err)
	}
	return nil
}

// Load deserializes a model artifact and validates its type tag.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}
	if !a.ModelType.Valid() {
		return nil, fmt.Errorf("model artifact has unknown type %q", a.ModelType)
	}
	return New(a.ModelType, a.Value)
}
