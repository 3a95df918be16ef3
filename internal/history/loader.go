package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anodelabs/anode-agent/internal/cluster"
)

// ErrNoHistory is returned when no history documents match the workload.
var ErrNoHistory = errors.New("no matching job-history documents")

// Loader fetches history documents for a workload from cluster storage and
// extracts their records.
type Loader struct {
	storage cluster.Storage
	logger  *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(storage cluster.Storage, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{storage: storage, logger: logger}
}

// LoadWorkload lists history documents under dir, keeps those whose name
// contains the workload (case-insensitive), and extracts records from each.
// Files that cannot be read or parsed are logged and skipped; they never
// abort the batch. Returns ErrNoHistory if no file matched at all.
func (l *Loader) LoadWorkload(ctx context.Context, dir, workload string) (*Extraction, error) {
	paths, err := l.storage.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("listing history documents: %w", err)
	}

	needle := strings.ToLower(workload)
	var matched []string
	for _, p := range paths {
		if strings.Contains(strings.ToLower(p), needle) {
			matched = append(matched, p)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w for workload %q under %s", ErrNoHistory, workload, dir)
	}

	merged := &Extraction{}
	for _, path := range matched {
		content, err := l.storage.ReadFile(ctx, path)
		if err != nil {
			l.logger.Warn("skipping unreadable history document", "path", path, "error", err)
			continue
		}
		out, err := Extract(content)
		if err != nil {
			l.logger.Warn("skipping unparseable history document", "path", path, "error", err)
			continue
		}
		if len(out.Skipped) > 0 {
			l.logger.Debug("skipped malformed history elements",
				"path", path,
				"skipped", len(out.Skipped),
			)
		}
		merged.Merge(out)
	}

	l.logger.Info("loaded job history",
		"workload", workload,
		"documents", len(matched),
		"records", len(merged.Records),
		"skipped_elements", len(merged.Skipped),
	)
	return merged, nil
}
