package clone

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cadence-cli/internal/model"
	"cadence-cli/internal/tree"
)

func fixtureSnapshot() tree.Snapshot {
	p := func(id string) *string { return model.StringPtr(id) }
	return tree.Build([]model.Task{
		{ID: "t1", Partition: model.PartitionTemplate, Pos: 10000, Title: "release", Done: true, Start: model.DatePtr("2024-01-01")},
		{ID: "t2", ParentID: p("t1"), Partition: model.PartitionTemplate, Pos: 10000, Title: "build", DefaultDuration: 2},
		{ID: "t3", ParentID: p("t1"), Partition: model.PartitionTemplate, Pos: 20000, Title: "ship", DefaultDuration: 1},
		{ID: "t4", ParentID: p("t2"), Partition: model.PartitionTemplate, Pos: 10000, Title: "compile", DefaultDuration: 1, Done: true},
	})
}

func snapshotFetcher(s tree.Snapshot) FetchChildren {
	return func(_ context.Context, parentID string) ([]model.Task, error) {
		return s.Children(parentID), nil
	}
}

func seqIDs(prefix string) NextID {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestSubtree_Isomorphic(t *testing.T) {
	s := fixtureSnapshot()
	root, _ := s.Get("t1")
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	res, err := Subtree(context.Background(), root, nil, model.PartitionInstance, "actor-1", Overrides{}, snapshotFetcher(s), seqIDs("new"), now)
	if err != nil {
		t.Fatalf("Subtree: %v", err)
	}
	if res.Count() != 4 {
		t.Fatalf("cloned %d tasks, want 4", res.Count())
	}

	srcIDs := map[string]bool{"t1": true, "t2": true, "t3": true, "t4": true}
	seen := map[string]bool{}
	for _, c := range res.Cloned {
		if srcIDs[c.ID] {
			t.Fatalf("clone reused source id %s", c.ID)
		}
		if seen[c.ID] {
			t.Fatalf("duplicate cloned id %s", c.ID)
		}
		seen[c.ID] = true
		if c.Partition != model.PartitionInstance {
			t.Fatalf("clone %s kept partition %s", c.ID, c.Partition)
		}
	}

	// Same shape and relative sibling order in the cloned tree.
	cs := tree.Build(res.Cloned)
	newRoot, ok := cs.Get(res.NewRootID)
	if !ok || newRoot.ParentID != nil {
		t.Fatalf("cloned root misplaced: %+v", newRoot)
	}
	kids := cs.Children(res.NewRootID)
	if len(kids) != 2 || kids[0].Title != "build" || kids[1].Title != "ship" {
		t.Fatalf("cloned children order wrong: %+v", kids)
	}
	grand := cs.Children(kids[0].ID)
	if len(grand) != 1 || grand[0].Title != "compile" {
		t.Fatalf("cloned grandchildren wrong: %+v", grand)
	}
}

func TestSubtree_ResetsInstanceState(t *testing.T) {
	s := fixtureSnapshot()
	root, _ := s.Get("t1")
	now := time.Now().UTC()

	res, err := Subtree(context.Background(), root, model.StringPtr("target"), model.PartitionInstance, "actor-2", Overrides{}, snapshotFetcher(s), seqIDs("c"), now)
	if err != nil {
		t.Fatalf("Subtree: %v", err)
	}
	for _, c := range res.Cloned {
		if c.Done {
			t.Fatalf("clone %s kept completion flag", c.ID)
		}
		if c.Start != nil || c.Due != nil || c.OffsetDays != 0 {
			t.Fatalf("clone %s kept derived schedule: %+v", c.ID, c)
		}
		if c.OwnerActorID != "actor-2" || c.CreatedBy != "actor-2" {
			t.Fatalf("clone %s not reowned: %+v", c.ID, c)
		}
	}
	got, _ := tree.Build(res.Cloned).Get(res.NewRootID)
	if got.ParentKey() != "target" {
		t.Fatalf("cloned root parent = %q, want target", got.ParentKey())
	}
}

func TestSubtree_OverridesRootOnly(t *testing.T) {
	s := fixtureSnapshot()
	root, _ := s.Get("t1")
	ov := Overrides{Title: "q3 release", Start: model.DatePtr("2024-07-01")}

	res, err := Subtree(context.Background(), root, nil, model.PartitionInstance, "a", ov, snapshotFetcher(s), seqIDs("o"), time.Now().UTC())
	if err != nil {
		t.Fatalf("Subtree: %v", err)
	}
	cs := tree.Build(res.Cloned)
	newRoot, _ := cs.Get(res.NewRootID)
	if newRoot.Title != "q3 release" || newRoot.Start == nil || string(*newRoot.Start) != "2024-07-01" {
		t.Fatalf("overrides not applied to root: %+v", newRoot)
	}
	for _, k := range cs.Children(res.NewRootID) {
		if k.Title == "q3 release" || k.Start != nil {
			t.Fatalf("override leaked to descendant %s", k.ID)
		}
	}
}

func TestSubtree_PositionsCopiedVerbatim(t *testing.T) {
	s := fixtureSnapshot()
	root, _ := s.Get("t1")
	res, err := Subtree(context.Background(), root, nil, model.PartitionTemplate, "a", Overrides{}, snapshotFetcher(s), seqIDs("p"), time.Now().UTC())
	if err != nil {
		t.Fatalf("Subtree: %v", err)
	}
	cs := tree.Build(res.Cloned)
	kids := cs.Children(res.NewRootID)
	if kids[0].Pos != 10000 || kids[1].Pos != 20000 {
		t.Fatalf("positions not copied verbatim: %d, %d", kids[0].Pos, kids[1].Pos)
	}
}
