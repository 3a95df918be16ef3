package weights

import (
	"math"
	"testing"

	"github.com/anodelabs/anode-agent/internal/history"
)

const epsilon = 1e-6

func TestComputeTwoNodes(t *testing.T) {
	records := []history.ExecutionRecord{
		{Node: "n1", StartTime: 1000, FinishTime: 2000, BytesRead: 1000},
		{Node: "n2", StartTime: 1000, FinishTime: 3000, BytesRead: 1000},
	}

	result := Compute(records)
	if len(result) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(result))
	}

	// n1: 1s over 1000 bytes, ndt=0.001, capacity=1000
	// n2: 2s over 1000 bytes, ndt=0.002, capacity=500
	if got := result["n1"].Capacity; math.Abs(got-1000) > epsilon {
		t.Errorf("n1 capacity = %v, want 1000", got)
	}
	if got := result["n2"].Capacity; math.Abs(got-500) > epsilon {
		t.Errorf("n2 capacity = %v, want 500", got)
	}
	if got := result["n1"].Weight; math.Abs(got-2.0/3.0) > epsilon {
		t.Errorf("n1 weight = %v, want %v", got, 2.0/3.0)
	}
	if got := result["n2"].Weight; math.Abs(got-1.0/3.0) > epsilon {
		t.Errorf("n2 weight = %v, want %v", got, 1.0/3.0)
	}

	sum := result["n1"].Weight + result["n2"].Weight
	if math.Abs(sum-1.0) > epsilon {
		t.Errorf("weights sum = %v, want 1.0", sum)
	}
}

func TestComputeAllZeroBytes(t *testing.T) {
	records := []history.ExecutionRecord{
		{Node: "n1", StartTime: 1000, FinishTime: 2000, BytesRead: 0},
		{Node: "n2", StartTime: 1000, FinishTime: 3000, BytesRead: 0},
	}

	result := Compute(records)
	if len(result) != 0 {
		t.Fatalf("expected empty result, got %d nodes", len(result))
	}
}

func TestComputeEmptyInput(t *testing.T) {
	if result := Compute(nil); len(result) != 0 {
		t.Fatalf("expected empty result, got %d nodes", len(result))
	}
}

func TestComputeSameNodeAverages(t *testing.T) {
	// Two samples for one node must average the ndt, not sum the capacity.
	records := []history.ExecutionRecord{
		{Node: "n1", StartTime: 0, FinishTime: 1000, BytesRead: 1000}, // ndt 0.001
		{Node: "n1", StartTime: 0, FinishTime: 3000, BytesRead: 1000}, // ndt 0.003
	}

	result := Compute(records)
	if len(result) != 1 {
		t.Fatalf("expected 1 node, got %d", len(result))
	}

	// avg ndt = 0.002, capacity = 500
	if got := result["n1"].Capacity; math.Abs(got-500) > epsilon {
		t.Errorf("capacity = %v, want 500 (averaged)", got)
	}
	if got := result["n1"].Weight; math.Abs(got-1.0) > epsilon {
		t.Errorf("weight = %v, want 1.0", got)
	}
}

func TestComputeSkipsInvalidSamples(t *testing.T) {
	records := []history.ExecutionRecord{
		{Node: "good", StartTime: 0, FinishTime: 1000, BytesRead: 1000},
		// All samples for "bad" are invalid, so it must not appear at all.
		{Node: "bad", StartTime: 1000, FinishTime: 1000, BytesRead: 1000}, // zero duration
		{Node: "bad", StartTime: 2000, FinishTime: 1000, BytesRead: 1000}, // negative duration
		{Node: "bad", StartTime: 0, FinishTime: 1000, BytesRead: -5},      // negative bytes
	}

	result := Compute(records)
	if len(result) != 1 {
		t.Fatalf("expected 1 node, got %d", len(result))
	}
	if _, ok := result["bad"]; ok {
		t.Error("node with only invalid samples must be absent from output")
	}
	if got := result["good"].Weight; math.Abs(got-1.0) > epsilon {
		t.Errorf("good weight = %v, want 1.0", got)
	}
}

func TestComputeInvalidSampleDoesNotPolluteNode(t *testing.T) {
	records := []history.ExecutionRecord{
		{Node: "n1", StartTime: 0, FinishTime: 1000, BytesRead: 1000},
		{Node: "n1", StartTime: 0, FinishTime: 5000, BytesRead: 0}, // skipped
	}

	result := Compute(records)
	if got := result["n1"].Capacity; math.Abs(got-1000) > epsilon {
		t.Errorf("capacity = %v, want 1000 (invalid sample must not contribute)", got)
	}
}
