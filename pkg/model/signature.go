package model

import (
	"fmt"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// ColumnSpec describes a single input or output column of a model.
type ColumnSpec struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Signature records the input/output schema of a model, inferred from sample
// data and predictions at training time.
type Signature struct {
	Inputs  []ColumnSpec `yaml:"inputs" json:"inputs"`
	Outputs []ColumnSpec `yaml:"outputs" json:"outputs"`
}

// InferSignature derives a signature from a sample feature matrix and the
// model's predictions on it. Every row must have the same width.
func InferSignature(inputs [][]float64, predictions []float64) (*Signature, error) {
	if len(inputs) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "cannot infer signature from empty input sample")
	}
	if len(predictions) != len(inputs) {
		return nil, errors.New(errors.ErrCodeInternal,
			"prediction count %d does not match input rows %d", len(predictions), len(inputs))
	}

	width := len(inputs[0])
	for i, row := range inputs {
		if len(row) != width {
			return nil, errors.New(errors.ErrCodeInternal,
				"ragged input sample: row %d has %d columns, want %d", i, len(row), width)
		}
	}

	sig := &Signature{
		Inputs:  make([]ColumnSpec, width),
		Outputs: []ColumnSpec{{Name: "predictions", Type: "double"}},
	}
	for i := range sig.Inputs {
		sig.Inputs[i] = ColumnSpec{Name: fmt.Sprintf("feature_%d", i), Type: "double"}
	}
	return sig, nil
}
