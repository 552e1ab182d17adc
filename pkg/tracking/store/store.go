// Package store provides run metadata storage for the tracker.
//
// This package defines the backend interface for persisting run records,
// with implementations for different deployments:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for CLI usage (the default)
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage for durable shared deployments
//
// # Usage
//
// Create a store:
//
//	// CLI
//	st, err := store.NewFileStore(root)
//
//	// Production
//	st, err := store.NewRedisStore(ctx, store.RedisConfig{Addr: "localhost:6379"})
//
// Manage runs:
//
//	run := store.NewRun("demo")
//	if err := st.CreateRun(ctx, run); err != nil {
//	    return err
//	}
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

// Run lifecycle states.
const (
	StatusRunning  RunStatus = "RUNNING"
	StatusFinished RunStatus = "FINISHED"
	StatusFailed   RunStatus = "FAILED"
)

// Run is the metadata record of a tracked execution context. Artifacts logged
// under the run are grouped by artifact path.
type Run struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name"`
	Status        RunStatus `json:"status" bson:"status"`
	StartTime     time.Time `json:"start_time" bson:"start_time"`
	EndTime       time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	ArtifactPaths []string  `json:"artifact_paths,omitempty" bson:"artifact_paths,omitempty"`
}

// NewRun creates a running Run with a fresh UUID.
func NewRun(name string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Name:      name,
		Status:    StatusRunning,
		StartTime: time.Now().UTC(),
	}
}

// RecordArtifactPath notes that artifacts were logged under path, keeping the
// list free of duplicates.
func (r *Run) RecordArtifactPath(path string) {
	for _, p := range r.ArtifactPaths {
		if p == path {
			return
		}
	}
	r.ArtifactPaths = append(r.ArtifactPaths, path)
}

// Store is the interface for run metadata backends.
type Store interface {
	// CreateRun persists a new run record.
	CreateRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run by ID.
	// Returns an error with code RUN_NOT_FOUND if the run doesn't exist.
	GetRun(ctx context.Context, id string) (*Run, error)

	// UpdateRun replaces an existing run record.
	UpdateRun(ctx context.Context, run *Run) error

	// ListRuns returns all runs, most recently started first.
	ListRuns(ctx context.Context) ([]*Run, error)

	// Close releases backend resources.
	Close() error
}
