package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anodelabs/anode-agent/internal/store"
)

// RunStore implements store.RunStore using PostgreSQL.
type RunStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Record persists a completed run.
func (s *RunStore) Record(ctx context.Context, run *store.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	weightsJSON, err := json.Marshal(run.Weights)
	if err != nil {
		return fmt.Errorf("encoding run weights: %w", err)
	}

	query := `
		INSERT INTO weight_runs (id, workload, kind, artifact_path, node_count, weights, reconfig_failed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query,
		run.ID, run.Workload, string(run.Kind), run.ArtifactPath,
		run.NodeCount, weightsJSON, run.ReconfigFailed, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	s.logger.Debug("recorded run", "id", run.ID, "workload", run.Workload, "kind", run.Kind)
	return nil
}

// Latest returns the most recent run for a workload, or nil if none.
func (s *RunStore) Latest(ctx context.Context, workload string) (*store.Run, error) {
	query := `
		SELECT id, workload, kind, artifact_path, node_count, weights, reconfig_failed, created_at
		FROM weight_runs
		WHERE workload = $1
		ORDER BY created_at DESC
		LIMIT 1`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, workload))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching latest run: %w", err)
	}
	return run, nil
}

// List returns up to limit runs for a workload, newest first.
func (s *RunStore) List(ctx context.Context, workload string, limit int) ([]*store.Run, error) {
	query := `
		SELECT id, workload, kind, artifact_path, node_count, weights, reconfig_failed, created_at
		FROM weight_runs
		WHERE workload = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, workload, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*store.Run, error) {
	var run store.Run
	var kind string
	var weightsJSON []byte

	err := row.Scan(&run.ID, &run.Workload, &kind, &run.ArtifactPath,
		&run.NodeCount, &weightsJSON, &run.ReconfigFailed, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.Kind = store.RunKind(kind)
	if len(weightsJSON) > 0 {
		if err := json.Unmarshal(weightsJSON, &run.Weights); err != nil {
			return nil, fmt.Errorf("decoding run weights: %w", err)
		}
	}
	return &run, nil
}
