// Package cluster provides thin collaborators for the storage cluster's CLI:
// distributed-filesystem file operations and the admin reconfiguration signal.
package cluster

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Storage defines the file operations the agent needs from the cluster.
type Storage interface {
	// List returns the full paths of files under dir.
	List(ctx context.Context, dir string) ([]string, error)
	// ReadFile returns the full content of the file at path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// Put uploads localPath to destPath, overwriting any existing file.
	Put(ctx context.Context, localPath, destPath string) error
}

// CommandError is returned when a cluster CLI invocation fails. It carries the
// captured stderr so operators see the cluster's own diagnostics.
type CommandError struct {
	Args     []string
	Stderr   string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("cluster command %q failed", strings.Join(e.Args, " "))
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// DFSCLI implements Storage by shelling out to the cluster's filesystem CLI
// (hdfs-compatible: "<binary> dfs -ls|-cat|-put").
type DFSCLI struct {
	binary string
	logger *slog.Logger
}

// NewDFSCLI creates a DFSCLI using the given CLI binary.
func NewDFSCLI(binary string, logger *slog.Logger) *DFSCLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &DFSCLI{binary: binary, logger: logger}
}

// run executes one CLI invocation and returns its stdout.
func (c *DFSCLI) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running cluster command", "binary", c.binary, "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		exitCode := 1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		return nil, &CommandError{
			Args:     append([]string{c.binary}, args...),
			Stderr:   stderr.String(),
			ExitCode: exitCode,
			Err:      err,
		}
	}
	return stdout.Bytes(), nil
}

// List returns the paths printed by "dfs -ls dir". Listing lines carry eight
// or more whitespace-separated fields with the path last; anything shorter
// (headers, summary lines) is ignored.
func (c *DFSCLI) List(ctx context.Context, dir string) ([]string, error) {
	out, err := c.run(ctx, "dfs", "-ls", dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	return parseListing(out), nil
}

// parseListing extracts file paths from "dfs -ls" output.
func parseListing(out []byte) []string {
	var paths []string
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 8 {
			paths = append(paths, fields[len(fields)-1])
		}
	}
	return paths
}

// ReadFile returns the content of path via "dfs -cat".
func (c *DFSCLI) ReadFile(ctx context.Context, path string) ([]byte, error) {
	out, err := c.run(ctx, "dfs", "-cat", path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// Put uploads localPath to destPath via "dfs -put -f", overwriting the
// destination if it exists.
func (c *DFSCLI) Put(ctx context.Context, localPath, destPath string) error {
	if _, err := c.run(ctx, "dfs", "-put", "-f", localPath, destPath); err != nil {
		return fmt.Errorf("uploading %s to %s: %w", localPath, destPath, err)
	}
	return nil
}
