package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// metaFile is the run record document inside each run directory.
const metaFile = "meta.json"

// FileStore implements a file-based run store for CLI usage.
// Each run is stored as a JSON document at <root>/<run_id>/meta.json, which
// keeps metadata next to the run's artifacts directory.
type FileStore struct {
	root string
}

// NewFileStore creates a file-based store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store root %s", dir)
	}
	return &FileStore{root: dir}, nil
}

// CreateRun persists a new run record.
func (s *FileStore) CreateRun(ctx context.Context, run *Run) error {
	if err := errors.ValidateRunID(run.ID); err != nil {
		return err
	}
	return s.write(run)
}

// GetRun retrieves a run by ID.
func (s *FileStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, id, metaFile))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read run %s", id)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode run %s", id)
	}
	return &run, nil
}

// UpdateRun replaces an existing run record.
func (s *FileStore) UpdateRun(ctx context.Context, run *Run) error {
	if _, err := s.GetRun(ctx, run.ID); err != nil {
		return err
	}
	return s.write(run)
}

// ListRuns returns all runs, most recently started first.
func (s *FileStore) ListRuns(ctx context.Context) ([]*Run, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list store root %s", s.root)
	}

	var runs []*Run
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		run, err := s.GetRun(ctx, e.Name())
		if err != nil {
			// Directories without a meta.json are not runs
			if errors.Is(err, errors.ErrCodeRunNotFound) || errors.Is(err, errors.ErrCodeInvalidRunID) {
				continue
			}
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) write(run *Run) error {
	dir := filepath.Join(s.root, run.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create run dir %s", dir)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode run %s", run.ID)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write run %s", run.ID)
	}
	return nil
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
