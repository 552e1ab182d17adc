package model

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// MLModelFile is the metadata document name stored in every model artifact
// directory, next to the model binary and the requirement manifests.
const MLModelFile = "MLmodel"

// ModelBinaryFile is the serialized model payload name inside an artifact
// directory.
const ModelBinaryFile = "model.bin"

// MLModel is the metadata document describing a logged model.
type MLModel struct {
	RunID          string     `yaml:"run_id"`
	ArtifactPath   string     `yaml:"artifact_path"`
	UTCTimeCreated string     `yaml:"utc_time_created"`
	Flavor         Flavor     `yaml:"flavor"`
	Signature      *Signature `yaml:"signature,omitempty"`
	ModelFile      string     `yaml:"model_file"`
}

// NewMLModel assembles the metadata document for a model being logged now.
func NewMLModel(runID, artifactPath string, m *Model) *MLModel {
	return &MLModel{
		RunID:          runID,
		ArtifactPath:   artifactPath,
		UTCTimeCreated: time.Now().UTC().Format(time.RFC3339),
		Flavor:         m.Flavor,
		Signature:      m.Signature,
		ModelFile:      ModelBinaryFile,
	}
}

// Marshal renders the document as YAML.
func (d *MLModel) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal MLmodel document")
	}
	return data, nil
}

// UnmarshalMLModel parses an MLmodel document.
func UnmarshalMLModel(data []byte) (*MLModel, error) {
	var d MLModel
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse MLmodel document")
	}
	return &d, nil
}
