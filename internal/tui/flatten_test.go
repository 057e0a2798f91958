package tui

import (
	"testing"

	"cadence-cli/internal/model"
	"cadence-cli/internal/tree"
)

func outlineTask(id, parent string, pos int64) model.Task {
	t := model.Task{ID: id, Partition: model.PartitionInstance, Pos: pos, Title: id}
	if parent != "" {
		t.ParentID = model.StringPtr(parent)
	}
	return t
}

func TestFlatten_OutlineOrderAndDepth(t *testing.T) {
	snap := tree.Build([]model.Task{
		outlineTask("r1", "", 10000),
		outlineTask("a", "r1", 10000),
		outlineTask("a1", "a", 10000),
		outlineTask("b", "r1", 20000),
		outlineTask("r2", "", 20000),
	})

	rows := flatten(snap, model.PartitionInstance, nil)
	wantIDs := []string{"r1", "a", "a1", "b", "r2"}
	wantDepth := []int{0, 1, 2, 1, 0}
	if len(rows) != len(wantIDs) {
		t.Fatalf("rows = %d, want %d", len(rows), len(wantIDs))
	}
	for i, r := range rows {
		if r.id != wantIDs[i] || r.depth != wantDepth[i] {
			t.Fatalf("row %d = %s@%d, want %s@%d", i, r.id, r.depth, wantIDs[i], wantDepth[i])
		}
	}
}

func TestFlatten_CollapsedHidesDescendants(t *testing.T) {
	snap := tree.Build([]model.Task{
		outlineTask("r", "", 10000),
		outlineTask("a", "r", 10000),
		outlineTask("a1", "a", 10000),
		outlineTask("b", "r", 20000),
	})

	rows := flatten(snap, model.PartitionInstance, map[string]bool{"a": true})
	wantIDs := []string{"r", "a", "b"}
	if len(rows) != len(wantIDs) {
		t.Fatalf("rows = %v", rows)
	}
	for i, r := range rows {
		if r.id != wantIDs[i] {
			t.Fatalf("row %d = %s, want %s", i, r.id, wantIDs[i])
		}
	}
}

func TestFlatten_PartitionFiltered(t *testing.T) {
	tpl := outlineTask("tpl", "", 10000)
	tpl.Partition = model.PartitionTemplate
	snap := tree.Build([]model.Task{tpl, outlineTask("inst", "", 10000)})

	rows := flatten(snap, model.PartitionInstance, nil)
	if len(rows) != 1 || rows[0].id != "inst" {
		t.Fatalf("rows = %v", rows)
	}
}
