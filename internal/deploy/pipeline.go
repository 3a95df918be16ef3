// Package deploy sequences the weight pipeline: load history, compute
// weights, write the artifact, publish it to cluster storage, upsert the
// config properties, and signal reconfiguration.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/anodelabs/anode-agent/internal/cluster"
	"github.com/anodelabs/anode-agent/internal/history"
	"github.com/anodelabs/anode-agent/internal/siteconf"
	"github.com/anodelabs/anode-agent/internal/store"
	"github.com/anodelabs/anode-agent/internal/weights"
)

// Options configures a Deployer.
type Options struct {
	// WeightsFileProperty names the site property holding the published
	// artifact's storage location.
	WeightsFileProperty string
	// InlineWeightsProperty names the site property holding the inline
	// node:weight list.
	InlineWeightsProperty string
}

// Deployer runs the pipeline. One Deployer serves many runs; each run is a
// fresh, stateless computation over freshly fetched inputs.
type Deployer struct {
	storage  cluster.Storage
	reconfig cluster.Reconfigurer
	runs     store.Store
	opts     Options
	logger   *slog.Logger
}

// NewDeployer creates a Deployer. runs may be nil to disable run recording.
func NewDeployer(storage cluster.Storage, reconfig cluster.Reconfigurer, runs store.Store, opts Options, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{
		storage:  storage,
		reconfig: reconfig,
		runs:     runs,
		opts:     opts,
		logger:   logger,
	}
}

// ComputeResult summarizes a weight recomputation.
type ComputeResult struct {
	Artifact        *weights.Artifact
	Records         int
	SkippedElements int
}

// ComputeWeights loads the workload's job history from historyDir, computes
// per-node weights, and writes the weight artifact to outPath. Returns
// history.ErrNoHistory (wrapped) when no history document matched.
func (d *Deployer) ComputeWeights(ctx context.Context, workload, historyDir, outPath string) (*ComputeResult, error) {
	log := d.logger.With("workload", workload)

	loader := history.NewLoader(d.storage, log)
	extraction, err := loader.LoadWorkload(ctx, historyDir, workload)
	if err != nil {
		return nil, err
	}

	nodeWeights := weights.Compute(extraction.Records)
	artifact := weights.NewArtifact(workload, nodeWeights)
	if err := artifact.WriteFile(outPath); err != nil {
		return nil, fmt.Errorf("writing weight artifact: %w", err)
	}

	log.Info("computed node weights",
		"nodes", len(nodeWeights),
		"records", len(extraction.Records),
		"out", outPath,
	)
	d.recordRun(ctx, &store.Run{
		Workload:     workload,
		Kind:         store.RunKindCompute,
		ArtifactPath: outPath,
		NodeCount:    len(nodeWeights),
		Weights:      weightValues(nodeWeights),
	})

	return &ComputeResult{
		Artifact:        artifact,
		Records:         len(extraction.Records),
		SkippedElements: len(extraction.Skipped),
	}, nil
}

// ApplyResult summarizes an artifact publish. ReconfigFailed is set when only
// the reconfiguration signal failed; the run still counts as successful and
// the operator should restart the cluster's config consumer manually.
type ApplyResult struct {
	Workload       string
	Nodes          int
	ReconfigFailed bool
	ReconfigErr    error
}

// Apply publishes the artifact at artifactPath to destPath on cluster
// storage, upserts the two config properties into the site file at sitePath,
// and signals reconfiguration. Publish and upsert failures are fatal and
// abort the run; no state written before the failure is rolled back
// (re-running the pipeline is the recovery mechanism). Both property upserts
// are applied in a single read-modify-write of the site file.
func (d *Deployer) Apply(ctx context.Context, artifactPath, destPath, sitePath string) (*ApplyResult, error) {
	artifact, err := weights.ReadFile(artifactPath)
	if err != nil {
		return nil, err
	}
	log := d.logger.With("workload", artifact.Workload)

	if err := d.storage.Put(ctx, artifactPath, destPath); err != nil {
		return nil, fmt.Errorf("publishing weight artifact: %w", err)
	}
	log.Info("published weight artifact", "dest", destPath)

	doc, err := siteconf.LoadFile(sitePath)
	if err != nil {
		return nil, err
	}
	updated := doc.Upsert(d.opts.WeightsFileProperty, destPath).
		Upsert(d.opts.InlineWeightsProperty, artifact.InlinePairs())
	if err := updated.SaveFile(sitePath); err != nil {
		return nil, err
	}
	log.Info("updated site configuration",
		"site", sitePath,
		"properties", []string{d.opts.WeightsFileProperty, d.opts.InlineWeightsProperty},
	)

	result := &ApplyResult{Workload: artifact.Workload, Nodes: len(artifact.Nodes)}
	if err := d.reconfig.Signal(ctx); err != nil {
		log.Warn("reconfiguration signal failed; restart the config consumer manually to load the new weights",
			"error", err,
		)
		result.ReconfigFailed = true
		result.ReconfigErr = err
	} else {
		log.Info("reconfiguration triggered")
	}

	d.recordRun(ctx, &store.Run{
		Workload:       artifact.Workload,
		Kind:           store.RunKindApply,
		ArtifactPath:   destPath,
		NodeCount:      len(artifact.Nodes),
		Weights:        artifactWeights(artifact),
		ReconfigFailed: result.ReconfigFailed,
	})
	return result, nil
}

// recordRun persists run history. Recording is advisory: failures are logged
// and never fail the pipeline.
func (d *Deployer) recordRun(ctx context.Context, run *store.Run) {
	if d.runs == nil {
		return
	}
	if err := d.runs.Runs().Record(ctx, run); err != nil {
		d.logger.Warn("failed to record run history", "workload", run.Workload, "error", err)
	}
}

func weightValues(nodeWeights map[string]weights.NodeWeight) map[string]float64 {
	out := make(map[string]float64, len(nodeWeights))
	for node, nw := range nodeWeights {
		out[node] = nw.Weight
	}
	return out
}

func artifactWeights(a *weights.Artifact) map[string]float64 {
	out := make(map[string]float64, len(a.Nodes))
	for _, n := range a.Nodes {
		if w, err := strconv.ParseFloat(n.Weight, 64); err == nil {
			out[n.Name] = w
		}
	}
	return out
}
