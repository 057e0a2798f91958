package store

import (
	"context"
	"testing"
	"time"

	"cadence-cli/internal/model"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTask(id, parent string, pos int64, p model.Partition) model.Task {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t := model.Task{
		ID: id, Partition: p, Pos: pos, Title: id,
		DefaultDuration: 1, DurationDays: 1,
		OwnerActorID: "owner", CreatedBy: "owner",
		CreatedAt: now, UpdatedAt: now,
	}
	if parent != "" {
		t.ParentID = model.StringPtr(parent)
	}
	return t
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := seedTask("task-1", "", 10000, model.PartitionInstance)
	in.Start = model.DatePtr("2024-01-01")
	in.Description = "first"
	if err := s.CreateTask(ctx, in); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := s.GetTask(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "task-1" || got.Pos != 10000 || got.Start == nil || string(*got.Start) != "2024-01-01" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.ParentID != nil {
		t.Fatalf("root task must have nil parent, got %v", *got.ParentID)
	}

	if _, err := s.GetTask(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("GetTask(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLite_ListSiblingsOrdered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, task := range []model.Task{
		seedTask("task-r", "", 10000, model.PartitionInstance),
		seedTask("task-b", "task-r", 20000, model.PartitionInstance),
		seedTask("task-a", "task-r", 10000, model.PartitionInstance),
		seedTask("task-t", "", 10000, model.PartitionTemplate),
	} {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%s): %v", task.ID, err)
		}
	}

	sibs, err := s.ListSiblings(ctx, model.StringPtr("task-r"), model.PartitionInstance)
	if err != nil {
		t.Fatalf("ListSiblings: %v", err)
	}
	if len(sibs) != 2 || sibs[0].ID != "task-a" || sibs[1].ID != "task-b" {
		t.Fatalf("siblings out of order: %+v", sibs)
	}

	roots, err := s.ListSiblings(ctx, nil, model.PartitionInstance)
	if err != nil {
		t.Fatalf("ListSiblings(roots): %v", err)
	}
	if len(roots) != 1 || roots[0].ID != "task-r" {
		t.Fatalf("instance roots wrong: %+v", roots)
	}
}

func TestSQLite_UpdatePositionReparents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, task := range []model.Task{
		seedTask("task-r", "", 10000, model.PartitionInstance),
		seedTask("task-x", "", 20000, model.PartitionInstance),
		seedTask("task-c", "task-r", 10000, model.PartitionInstance),
	} {
		_ = s.CreateTask(ctx, task)
	}

	if err := s.UpdatePosition(ctx, "task-c", 15000, model.StringPtr("task-x")); err != nil {
		t.Fatalf("UpdatePosition: %v", err)
	}
	got, _ := s.GetTask(ctx, "task-c")
	if got.ParentKey() != "task-x" || got.Pos != 15000 {
		t.Fatalf("reparent not persisted: %+v", got)
	}

	if err := s.UpdatePosition(ctx, "task-nope", 1, nil); err != ErrNotFound {
		t.Fatalf("UpdatePosition(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLite_CloneSubtreeAtomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, task := range []model.Task{
		seedTask("task-r", "", 10000, model.PartitionTemplate),
		seedTask("task-c1", "task-r", 10000, model.PartitionTemplate),
		seedTask("task-c2", "task-r", 20000, model.PartitionTemplate),
		seedTask("task-g", "task-c1", 10000, model.PartitionTemplate),
	} {
		_ = s.CreateTask(ctx, task)
	}

	newRoot, n, err := s.CloneSubtree(ctx, "task-r", CloneSpec{
		Partition: model.PartitionInstance,
		ActorID:   "actor-9",
		Title:     "live plan",
		Start:     model.DatePtr("2024-09-01"),
	})
	if err != nil {
		t.Fatalf("CloneSubtree: %v", err)
	}
	if n != 4 {
		t.Fatalf("cloned %d tasks, want 4", n)
	}

	root, err := s.GetTask(ctx, newRoot)
	if err != nil {
		t.Fatalf("GetTask(clone root): %v", err)
	}
	if root.Partition != model.PartitionInstance || root.Title != "live plan" {
		t.Fatalf("clone root wrong: %+v", root)
	}
	if root.Start == nil || string(*root.Start) != "2024-09-01" {
		t.Fatalf("root start override lost: %+v", root.Start)
	}

	kids, err := s.FetchChildren(ctx, newRoot)
	if err != nil {
		t.Fatalf("FetchChildren: %v", err)
	}
	if len(kids) != 2 || kids[0].Title != "task-c1" || kids[1].Title != "task-c2" {
		t.Fatalf("clone children wrong: %+v", kids)
	}
	for _, k := range kids {
		if k.Start != nil {
			t.Fatalf("override leaked to descendant %s", k.ID)
		}
	}

	// Source is untouched.
	src, _ := s.GetTask(ctx, "task-r")
	if src.Partition != model.PartitionTemplate {
		t.Fatalf("source mutated by clone: %+v", src)
	}

	if _, _, err := s.CloneSubtree(ctx, "task-none", CloneSpec{Partition: model.PartitionInstance}); err != ErrNotFound {
		t.Fatalf("CloneSubtree(missing) = %v, want ErrNotFound", err)
	}
}

func TestSQLite_DeleteTask(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_ = s.CreateTask(ctx, seedTask("task-1", "", 10000, model.PartitionInstance))

	if err := s.DeleteTask(ctx, "task-1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := s.GetTask(ctx, "task-1"); err != ErrNotFound {
		t.Fatalf("task survived delete: %v", err)
	}
}

func TestNextID_Unique(t *testing.T) {
	s := openTestStore(t)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := s.NextID()
		if seen[id] {
			t.Fatalf("NextID repeated %s", id)
		}
		seen[id] = true
	}
}
