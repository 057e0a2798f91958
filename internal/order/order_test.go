package order

import (
	"testing"
	"time"

	"cadence-cli/internal/model"
)

func int64Ptr(v int64) *int64 { return &v }

func TestComputeSlot_Midpoint(t *testing.T) {
	got, err := ComputeSlot(10000, int64Ptr(20000))
	if err != nil {
		t.Fatalf("ComputeSlot: %v", err)
	}
	if got != 15000 {
		t.Fatalf("ComputeSlot(10000, 20000) = %d, want 15000", got)
	}
}

func TestComputeSlot_AppendUsesSyntheticUpperBound(t *testing.T) {
	got, err := ComputeSlot(30000, nil)
	if err != nil {
		t.Fatalf("ComputeSlot: %v", err)
	}
	// Upper bound 30000 + 2*Step = 50000, midpoint 40000.
	if got != 40000 {
		t.Fatalf("ComputeSlot(30000, nil) = %d, want 40000", got)
	}
}

func TestComputeSlot_TightGapSignalsRenormalize(t *testing.T) {
	if _, err := ComputeSlot(10000, int64Ptr(10001)); err != ErrNeedsRenormalize {
		t.Fatalf("expected ErrNeedsRenormalize for gap < %d, got %v", MinGap, err)
	}
	if _, err := ComputeSlot(10000, int64Ptr(10000)); err != ErrNeedsRenormalize {
		t.Fatalf("expected ErrNeedsRenormalize for zero gap, got %v", err)
	}
}

func TestComputeSlot_NeverReturnsBoundaryKey(t *testing.T) {
	got, err := ComputeSlot(10000, int64Ptr(10002))
	if err != nil {
		t.Fatalf("ComputeSlot: %v", err)
	}
	if got <= 10000 || got >= 10002 {
		t.Fatalf("ComputeSlot returned out-of-range key %d", got)
	}
}

func sibs(keys ...int64) []model.Task {
	out := make([]model.Task, 0, len(keys))
	for i, k := range keys {
		out = append(out, model.Task{ID: string(rune('a' + i)), Pos: k})
	}
	return out
}

func TestRenormalize_AssignsStepMultiplesInOrder(t *testing.T) {
	got := Renormalize(sibs(3, 7, 9, 100))
	want := map[string]int64{"a": Step, "b": 2 * Step, "c": 3 * Step, "d": 4 * Step}
	if len(got) != len(want) {
		t.Fatalf("Renormalize changed %d keys, want %d", len(got), len(want))
	}
	for id, k := range want {
		if got[id] != k {
			t.Fatalf("Renormalize[%s] = %d, want %d", id, got[id], k)
		}
	}
}

func TestRenormalize_Idempotent(t *testing.T) {
	first := Renormalize(sibs(3, 7, 9))
	normalized := sibs(0, 0, 0)
	for i := range normalized {
		normalized[i].Pos = first[normalized[i].ID]
	}
	second := Renormalize(normalized)
	if len(second) != 0 {
		t.Fatalf("renormalizing a normal set should be a no-op, got %v", second)
	}
}

func TestSortSiblings_TiesBreakOnCreatedAtThenID(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: "b", Pos: 10, CreatedAt: t0},
		{ID: "a", Pos: 10, CreatedAt: t0},
		{ID: "c", Pos: 5, CreatedAt: t0.Add(time.Hour)},
	}
	SortSiblings(tasks)
	if tasks[0].ID != "c" || tasks[1].ID != "a" || tasks[2].ID != "b" {
		t.Fatalf("unexpected order: %s %s %s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}

func TestSlotAt_BoundsClamped(t *testing.T) {
	s := sibs(10000, 20000)
	if k, err := SlotAt(s, -5); err != nil || k >= 10000 {
		t.Fatalf("SlotAt(-5) = %d, %v; want key below first sibling", k, err)
	}
	if k, err := SlotAt(s, 99); err != nil || k <= 20000 {
		t.Fatalf("SlotAt(99) = %d, %v; want key above last sibling", k, err)
	}
}

func TestAppendKey_KeepsHeadroom(t *testing.T) {
	s := sibs()
	k := AppendKey(s)
	if k != Step {
		t.Fatalf("AppendKey(empty) = %d, want %d", k, Step)
	}
	// Repeated appends must keep strictly increasing keys.
	prev := k
	for i := 0; i < 50; i++ {
		s = append(s, model.Task{ID: "x", Pos: prev})
		next := AppendKey(s)
		if next <= prev {
			t.Fatalf("append %d produced non-increasing key %d after %d", i, next, prev)
		}
		prev = next
	}
}
