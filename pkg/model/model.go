// Package model defines the trained-model record handed to the tracking
// client for logging, along with its framework flavor, inferred signature,
// and the MLmodel metadata document persisted beside the binary.
package model

import "fmt"

// Flavor identifies the framework that produced a model.
// The tracker uses it to derive the default requirement pin for the model's
// runtime environment.
type Flavor struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Pin returns the pip version pin for the flavor, e.g. "xgboost==2.0.3".
func (f Flavor) Pin() string {
	return fmt.Sprintf("%s==%s", f.Name, f.Version)
}

// Model is a trained model ready to be logged to a run.
type Model struct {
	Flavor    Flavor
	Payload   []byte // serialized model binary
	Signature *Signature
}

// New creates a model record for the given flavor and serialized payload.
func New(flavor Flavor, payload []byte) *Model {
	return &Model{Flavor: flavor, Payload: payload}
}

// DefaultRequirements returns the framework-inferred requirement set used
// when the caller does not override requirements at logging time.
func (m *Model) DefaultRequirements() []string {
	return []string{m.Flavor.Pin()}
}
