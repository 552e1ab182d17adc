// Package tracking implements the model-logging client: run lifecycle,
// LogModel with requirement merging, and artifact retrieval.
//
// A Tracker pairs a run metadata store with an artifact repository. Logging a
// model resolves the caller's requirement declarations (see
// [github.com/mlfoundry/modeltrack/pkg/requirements]) and persists four files
// under <run>/<artifact_path>/: the model binary, the MLmodel metadata
// document, requirements.txt, and constraints.txt when a `-c` directive was
// supplied.
package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/mlfoundry/modeltrack/pkg/artifacts"
	"github.com/mlfoundry/modeltrack/pkg/errors"
	"github.com/mlfoundry/modeltrack/pkg/model"
	"github.com/mlfoundry/modeltrack/pkg/requirements"
	"github.com/mlfoundry/modeltrack/pkg/tracking/store"
)

// Tracker logs models to runs and retrieves their artifacts.
type Tracker struct {
	store store.Store
	repo  artifacts.Repository
}

// New creates a tracker over the given metadata store and artifact repository.
func New(st store.Store, repo artifacts.Repository) *Tracker {
	return &Tracker{store: st, repo: repo}
}

// StartRun creates a new running run.
func (t *Tracker) StartRun(ctx context.Context, name string) (*store.Run, error) {
	run := store.NewRun(name)
	if err := t.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// EndRun marks a run finished or failed.
func (t *Tracker) EndRun(ctx context.Context, runID string, status store.RunStatus) error {
	run, err := t.store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	run.Status = status
	run.EndTime = time.Now().UTC()
	return t.store.UpdateRun(ctx, run)
}

// GetRun retrieves run metadata.
func (t *Tracker) GetRun(ctx context.Context, runID string) (*store.Run, error) {
	return t.store.GetRun(ctx, runID)
}

// ListRuns returns all runs, most recently started first.
func (t *Tracker) ListRuns(ctx context.Context) ([]*store.Run, error) {
	return t.store.ListRuns(ctx)
}

// LogModel persists a model and its requirement manifests under the run's
// artifact path. The record is immutable once written; logging the same
// artifact path twice overwrites it wholesale.
func (t *Tracker) LogModel(ctx context.Context, runID string, m *model.Model, artifactPath string, opts ...LogModelOption) error {
	run, err := t.store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if err := errors.ValidateArtifactPath(artifactPath); err != nil {
		return err
	}

	var o logModelOptions
	for _, opt := range opts {
		opt(&o)
	}

	spec := requirements.Spec{
		Defaults:     m.DefaultRequirements(),
		Override:     o.requirements,
		OverridePath: o.requirementsPath,
		Extra:        o.extra,
	}
	manifest, err := spec.Resolve()
	if err != nil {
		return err
	}

	doc := model.NewMLModel(runID, artifactPath, m)
	meta, err := doc.Marshal()
	if err != nil {
		return err
	}

	files := map[string][]byte{
		model.ModelBinaryFile:         m.Payload,
		model.MLModelFile:             meta,
		requirements.RequirementsFile: manifestBytes(manifest.Requirements),
	}
	if manifest.HasConstraints() {
		files[requirements.ConstraintsFile] = manifestBytes(manifest.Constraints)
	}

	for name, data := range files {
		if err := t.repo.Upload(ctx, runID, artifactPath, name, data); err != nil {
			return err
		}
	}

	run.RecordArtifactPath(artifactPath)
	return t.store.UpdateRun(ctx, run)
}

// ListArtifacts returns the file names logged under an artifact path.
func (t *Tracker) ListArtifacts(ctx context.Context, runID, artifactPath string) ([]string, error) {
	return t.repo.List(ctx, runID, artifactPath)
}

// DownloadArtifact resolves an artifact by run ID and path relative to the
// run's artifact root, returning a local file path.
func (t *Tracker) DownloadArtifact(ctx context.Context, runID, path string) (string, error) {
	return t.repo.Download(ctx, runID, path)
}

// ManifestSet downloads a manifest file from an artifact path and returns its
// non-empty lines as a set, ready for containment checks.
func (t *Tracker) ManifestSet(ctx context.Context, runID, artifactPath, name string) (requirements.Set, error) {
	local, err := t.repo.Download(ctx, runID, artifactPath+"/"+name)
	if err != nil {
		return nil, err
	}
	lines, err := requirements.ReadLines(local)
	if err != nil {
		return nil, err
	}
	return requirements.NewSet(lines...), nil
}

// manifestBytes renders manifest lines as a newline-terminated text file.
func manifestBytes(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}
