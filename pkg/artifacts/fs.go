// Package artifacts persists run-scoped artifacts on the local filesystem.
//
// Every artifact lives under the repository root at
// <root>/<run_id>/artifacts/<artifact_path>/<name>. The layout is the
// persisted contract: manifests written by the tracking client are found at
// <artifact_path>/requirements.txt and <artifact_path>/constraints.txt.
package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// Repository stores and retrieves run-scoped artifacts.
type Repository interface {
	// Upload writes an artifact file under the run's artifact namespace.
	Upload(ctx context.Context, runID, artifactPath, name string, data []byte) error

	// Download resolves an artifact by its path relative to the run's
	// artifact root (e.g. "default/requirements.txt") and returns a local
	// file path to its contents.
	Download(ctx context.Context, runID, path string) (string, error)

	// List returns the file names stored under an artifact path, sorted.
	List(ctx context.Context, runID, artifactPath string) ([]string, error)
}

// FSRepository implements Repository on the local filesystem.
type FSRepository struct {
	root string
}

// NewFSRepository creates a filesystem repository rooted at dir.
// The directory will be created if it doesn't exist.
func NewFSRepository(dir string) (*FSRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create artifact root %s", dir)
	}
	return &FSRepository{root: dir}, nil
}

// Root returns the repository root directory.
func (r *FSRepository) Root() string {
	return r.root
}

// Upload writes data to <root>/<runID>/artifacts/<artifactPath>/<name>.
func (r *FSRepository) Upload(ctx context.Context, runID, artifactPath, name string, data []byte) error {
	if err := errors.ValidateRunID(runID); err != nil {
		return err
	}
	if err := errors.ValidateArtifactPath(artifactPath); err != nil {
		return err
	}

	dir := filepath.Join(r.root, runID, "artifacts", filepath.FromSlash(artifactPath))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create artifact dir %s", dir)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write artifact %s", path)
	}
	return nil
}

// Download returns the local path of an artifact. The repository is already
// file-backed, so no copy is made.
func (r *FSRepository) Download(ctx context.Context, runID, path string) (string, error) {
	if err := errors.ValidateRunID(runID); err != nil {
		return "", err
	}
	if err := errors.ValidateArtifactPath(path); err != nil {
		return "", err
	}

	local := filepath.Join(r.root, runID, "artifacts", filepath.FromSlash(path))
	if _, err := os.Stat(local); err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeArtifactNotFound, "artifact %s not found in run %s", path, runID)
		}
		return "", errors.Wrap(errors.ErrCodeStore, err, "stat artifact %s", local)
	}
	return local, nil
}

// List returns the sorted file names under an artifact path.
func (r *FSRepository) List(ctx context.Context, runID, artifactPath string) ([]string, error) {
	if err := errors.ValidateRunID(runID); err != nil {
		return nil, err
	}
	if err := errors.ValidateArtifactPath(artifactPath); err != nil {
		return nil, err
	}

	dir := filepath.Join(r.root, runID, "artifacts", filepath.FromSlash(artifactPath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeArtifactNotFound, "artifact path %s not found in run %s", artifactPath, runID)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list artifacts in %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Ensure FSRepository implements Repository.
var _ Repository = (*FSRepository)(nil)
