// Package tree holds the immutable in-memory view of a task tree.
//
// A Snapshot is a value: every transformation returns a new Snapshot and
// leaves the receiver untouched. Persistence is driven by diffing an
// original snapshot against a transformed one.
package tree

import (
	"sort"
	"strings"

	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
)

// Snapshot indexes tasks by id and by parent (children ordered by
// position key). The empty parent key "" holds partition roots.
type Snapshot struct {
	tasks    map[string]model.Task
	children map[string][]string
}

// Build constructs a snapshot from a flat task list. Later duplicates of
// the same id win, matching load-from-store semantics.
func Build(tasks []model.Task) Snapshot {
	s := Snapshot{
		tasks:    make(map[string]model.Task, len(tasks)),
		children: map[string][]string{},
	}
	for _, t := range tasks {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		t.ID = id
		s.tasks[id] = t
	}
	s.reindex()
	return s
}

func (s *Snapshot) reindex() {
	s.children = map[string][]string{}
	byParent := map[string][]model.Task{}
	for _, t := range s.tasks {
		byParent[t.ParentKey()] = append(byParent[t.ParentKey()], t)
	}
	for pid, kids := range byParent {
		order.SortSiblings(kids)
		ids := make([]string, 0, len(kids))
		for _, k := range kids {
			ids = append(ids, k.ID)
		}
		s.children[pid] = ids
	}
}

func (s Snapshot) Len() int { return len(s.tasks) }

func (s Snapshot) Get(id string) (model.Task, bool) {
	t, ok := s.tasks[strings.TrimSpace(id)]
	return t, ok
}

// Children returns the ordered child tasks of parentID ("" for roots).
func (s Snapshot) Children(parentID string) []model.Task {
	ids := s.children[strings.TrimSpace(parentID)]
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.tasks[id])
	}
	return out
}

func (s Snapshot) HasChildren(id string) bool {
	return len(s.children[strings.TrimSpace(id)]) > 0
}

// Roots returns the ordered roots of one partition.
func (s Snapshot) Roots(p model.Partition) []model.Task {
	out := []model.Task{}
	for _, t := range s.Children("") {
		if t.Partition == p {
			out = append(out, t)
		}
	}
	return out
}

// Tasks returns all tasks sorted by id, for deterministic iteration.
func (s Snapshot) Tasks() []model.Task {
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// With returns a snapshot with t inserted or replaced.
func (s Snapshot) With(ts ...model.Task) Snapshot {
	next := Snapshot{tasks: make(map[string]model.Task, len(s.tasks)+len(ts))}
	for id, t := range s.tasks {
		next.tasks[id] = t
	}
	for _, t := range ts {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			continue
		}
		t.ID = id
		next.tasks[id] = t
	}
	next.reindex()
	return next
}

// Without returns a snapshot with the given ids removed.
func (s Snapshot) Without(ids ...string) Snapshot {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[strings.TrimSpace(id)] = true
	}
	next := Snapshot{tasks: make(map[string]model.Task, len(s.tasks))}
	for id, t := range s.tasks {
		if drop[id] {
			continue
		}
		next.tasks[id] = t
	}
	next.reindex()
	return next
}

// IsDescendant reports whether id sits strictly below ancestorID,
// walking parent pointers upward. A visited set guards against a
// corrupted cyclic graph: re-visiting an id terminates the walk.
func (s Snapshot) IsDescendant(ancestorID, id string) bool {
	ancestorID = strings.TrimSpace(ancestorID)
	cur := strings.TrimSpace(id)
	if ancestorID == "" || cur == "" || ancestorID == cur {
		return false
	}
	seen := map[string]bool{}
	for cur != "" {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		t, ok := s.tasks[cur]
		if !ok {
			return false
		}
		cur = t.ParentKey()
		if cur == ancestorID {
			return true
		}
	}
	return false
}

// SubtreeIDs returns rootID followed by all descendant ids in pre-order
// (children by position). A seen set keeps a corrupted graph from
// looping.
func (s Snapshot) SubtreeIDs(rootID string) []string {
	rootID = strings.TrimSpace(rootID)
	if rootID == "" {
		return nil
	}
	if _, ok := s.tasks[rootID]; !ok {
		return nil
	}
	out := []string{}
	seen := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, child := range s.children[id] {
			walk(child)
		}
	}
	walk(rootID)
	return out
}
