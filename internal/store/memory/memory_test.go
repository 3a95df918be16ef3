package memory

import (
	"context"
	"testing"
	"time"

	"github.com/anodelabs/anode-agent/internal/store"
)

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStore()
	run := &store.Run{Workload: "WordCount", Kind: store.RunKindCompute}

	if err := s.Runs().Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Runs().Latest(context.Background(), "WordCount")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil || got.ID == "" || got.CreatedAt.IsZero() {
		t.Errorf("run = %+v", got)
	}
}

func TestLatestReturnsNewest(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := &store.Run{Workload: "WordCount", Kind: store.RunKindCompute, CreatedAt: time.Now().Add(-time.Hour)}
	second := &store.Run{Workload: "WordCount", Kind: store.RunKindApply}
	if err := s.Runs().Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := s.Runs().Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.Runs().Latest(ctx, "WordCount")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.Kind != store.RunKindApply {
		t.Errorf("latest kind = %v, want apply", got.Kind)
	}
}

func TestLatestMissingWorkload(t *testing.T) {
	s := NewMemoryStore()
	got, err := s.Runs().Latest(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got != nil {
		t.Errorf("run = %+v, want nil", got)
	}
}

func TestListHonorsLimitAndWorkload(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Runs().Record(ctx, &store.Run{Workload: "WordCount"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Runs().Record(ctx, &store.Run{Workload: "TeraSort"}); err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs().List(ctx, "WordCount", 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("len = %d, want 3", len(runs))
	}
	for _, r := range runs {
		if r.Workload != "WordCount" {
			t.Errorf("unexpected workload %q", r.Workload)
		}
	}
}
