// Package weights turns execution records into a normalized per-node weight
// distribution and reads/writes the weight artifact that carries it.
package weights

import (
	"github.com/anodelabs/anode-agent/internal/history"
)

// NodeWeight is the durable per-node output of one computation run.
// Capacity is the node's relative speed score; Weight is capacity normalized
// across all nodes, so weights sum to 1 whenever any capacity is positive.
type NodeWeight struct {
	Node     string
	Capacity float64
	Weight   float64
}

// nodeStats accumulates normalized-delay-time samples for one node.
type nodeStats struct {
	ndtSum float64
	count  int
}

// Compute aggregates execution records into per-node weights.
//
// Each valid record contributes one normalized-delay-time sample
// (execution seconds per byte transferred); records with non-positive
// duration or transfer are not valid samples and are skipped. A node's
// capacity is the inverse of its average sample, and weights are capacities
// normalized to sum to 1. When no node has positive capacity the result
// falls back to a uniform distribution over the observed nodes; with no
// observed nodes the result is empty. Aggregation is commutative, so input
// order only matters up to floating-point rounding.
func Compute(records []history.ExecutionRecord) map[string]NodeWeight {
	stats := make(map[string]*nodeStats)
	for _, r := range records {
		if r.BytesRead <= 0 || r.FinishTime <= r.StartTime {
			continue
		}
		execSeconds := float64(r.FinishTime-r.StartTime) / 1000.0
		ndt := execSeconds / float64(r.BytesRead)

		s := stats[r.Node]
		if s == nil {
			s = &nodeStats{}
			stats[r.Node] = s
		}
		s.ndtSum += ndt
		s.count++
	}

	result := make(map[string]NodeWeight, len(stats))
	totalCapacity := 0.0
	for node, s := range stats {
		avgNdt := s.ndtSum / float64(s.count)
		capacity := 0.0
		if avgNdt > 0 {
			capacity = 1.0 / avgNdt
		}
		result[node] = NodeWeight{Node: node, Capacity: capacity}
		totalCapacity += capacity
	}

	if totalCapacity > 0 {
		for node, nw := range result {
			nw.Weight = nw.Capacity / totalCapacity
			result[node] = nw
		}
		return result
	}

	// No capacity signal at all: fall back to a uniform distribution over
	// the observed nodes.
	if len(result) > 0 {
		uniform := 1.0 / float64(len(result))
		for node, nw := range result {
			nw.Weight = uniform
			result[node] = nw
		}
	}
	return result
}
