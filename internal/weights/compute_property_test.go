package weights

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/anodelabs/anode-agent/internal/history"
)

// genNodeName generates one of a small pool of node names so that records
// frequently share a node.
func genNodeName() gopter.Gen {
	return gen.OneConstOf("dn-01", "dn-02", "dn-03", "dn-04", "dn-05")
}

// genValidRecord generates a record with positive duration and transfer.
func genValidRecord() gopter.Gen {
	return gen.Struct(reflect.TypeOf(history.ExecutionRecord{}), map[string]gopter.Gen{
		"Node":       genNodeName(),
		"StartTime":  gen.Int64Range(0, 1_000_000),
		"FinishTime": gen.Int64Range(1_000_001, 10_000_000),
		"BytesRead":  gen.Int64Range(1, 1<<40),
	})
}

// genInvalidRecord generates a record that must be skipped: non-positive
// transfer or non-positive duration.
func genInvalidRecord() gopter.Gen {
	return gen.OneGenOf(
		gen.Struct(reflect.TypeOf(history.ExecutionRecord{}), map[string]gopter.Gen{
			"Node":       genNodeName(),
			"StartTime":  gen.Int64Range(0, 1_000_000),
			"FinishTime": gen.Int64Range(1_000_001, 10_000_000),
			"BytesRead":  gen.Int64Range(-1000, 0),
		}),
		gen.Struct(reflect.TypeOf(history.ExecutionRecord{}), map[string]gopter.Gen{
			"Node":       genNodeName(),
			"StartTime":  gen.Int64Range(1_000_000, 2_000_000),
			"FinishTime": gen.Int64Range(0, 1_000_000),
			"BytesRead":  gen.Int64Range(1, 1<<40),
		}),
	)
}

func TestWeightsSumToOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("weights over valid records sum to 1 within 1e-6", prop.ForAll(
		func(records []history.ExecutionRecord) bool {
			result := Compute(records)
			if len(records) > 0 && len(result) == 0 {
				return false
			}
			if len(result) == 0 {
				return true
			}
			sum := 0.0
			for _, nw := range result {
				sum += nw.Weight
			}
			return math.Abs(sum-1.0) <= 1e-6
		},
		gen.SliceOf(genValidRecord()),
	))

	properties.Property("weights are in [0,1] and capacities non-negative", prop.ForAll(
		func(records []history.ExecutionRecord) bool {
			for _, nw := range Compute(records) {
				if nw.Weight < 0 || nw.Weight > 1 || nw.Capacity < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genValidRecord()),
	))

	properties.TestingRun(t)
}

func TestComputeOrderInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("shuffling input does not change the result beyond rounding", prop.ForAll(
		func(records []history.ExecutionRecord, seed int64) bool {
			a := Compute(records)

			shuffled := make([]history.ExecutionRecord, len(records))
			copy(shuffled, records)
			rng := rand.New(rand.NewSource(seed))
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			b := Compute(shuffled)

			if len(a) != len(b) {
				return false
			}
			for node, nwA := range a {
				nwB, ok := b[node]
				if !ok {
					return false
				}
				if math.Abs(nwA.Weight-nwB.Weight) > 1e-6 {
					return false
				}
				// Capacities can be large; compare relatively.
				scale := math.Max(math.Abs(nwA.Capacity), 1.0)
				if math.Abs(nwA.Capacity-nwB.Capacity)/scale > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genValidRecord()),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

func TestInvalidRecordsNeverContribute(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("adding invalid records does not change the result", prop.ForAll(
		func(valid, invalid []history.ExecutionRecord) bool {
			a := Compute(valid)
			b := Compute(append(append([]history.ExecutionRecord{}, valid...), invalid...))

			if len(a) != len(b) {
				return false
			}
			for node, nwA := range a {
				nwB, ok := b[node]
				if !ok {
					return false
				}
				if math.Abs(nwA.Weight-nwB.Weight) > 1e-6 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genValidRecord()),
		gen.SliceOf(genInvalidRecord()),
	))

	properties.Property("only invalid records yield an empty result", prop.ForAll(
		func(invalid []history.ExecutionRecord) bool {
			return len(Compute(invalid)) == 0
		},
		gen.SliceOf(genInvalidRecord()),
	))

	properties.TestingRun(t)
}
