// Package store provides persistence interfaces for weight-run history.
package store

import (
	"context"
	"time"
)

// RunKind distinguishes the two pipeline entry points.
type RunKind string

const (
	// RunKindCompute is a weight recomputation from job history.
	RunKindCompute RunKind = "compute"
	// RunKindApply is a publish of an artifact into cluster configuration.
	RunKindApply RunKind = "apply"
)

// Run is one recorded pipeline execution. Weights maps node name to the
// weight the run produced or published.
type Run struct {
	ID             string             `json:"id"`
	Workload       string             `json:"workload"`
	Kind           RunKind            `json:"kind"`
	ArtifactPath   string             `json:"artifact_path"`
	NodeCount      int                `json:"node_count"`
	Weights        map[string]float64 `json:"weights"`
	ReconfigFailed bool               `json:"reconfig_failed"`
	CreatedAt      time.Time          `json:"created_at"`
}

// RunStore defines operations for run history.
type RunStore interface {
	// Record persists a completed run.
	Record(ctx context.Context, run *Run) error
	// Latest returns the most recent run for a workload, or nil if none.
	Latest(ctx context.Context, workload string) (*Run, error)
	// List returns up to limit runs for a workload, newest first.
	List(ctx context.Context, workload string, limit int) ([]*Run, error)
}

// Store is the main interface for run-history persistence.
type Store interface {
	// Runs returns the RunStore for run operations.
	Runs() RunStore
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
	// Close releases the backing store's resources.
	Close() error
}
