package cluster

import (
	"context"
	"fmt"
	"log/slog"
)

// Reconfigurer signals the cluster to reload its configuration.
type Reconfigurer interface {
	// Signal asks the cluster to start a dynamic reconfiguration.
	Signal(ctx context.Context) error
}

// DFSAdmin implements Reconfigurer via the cluster admin CLI
// ("<binary> dfsadmin -reconfig").
type DFSAdmin struct {
	cli *DFSCLI
}

// NewDFSAdmin creates a DFSAdmin sharing the given CLI binding.
func NewDFSAdmin(binary string, logger *slog.Logger) *DFSAdmin {
	if logger == nil {
		logger = slog.Default()
	}
	return &DFSAdmin{cli: NewDFSCLI(binary, logger)}
}

// Signal triggers a dynamic reconfiguration. Support depends on the cluster
// software version; callers treat failure as recoverable by manual restart.
func (a *DFSAdmin) Signal(ctx context.Context) error {
	if _, err := a.cli.run(ctx, "dfsadmin", "-reconfig"); err != nil {
		return fmt.Errorf("signaling reconfiguration: %w", err)
	}
	return nil
}
