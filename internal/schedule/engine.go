// Package schedule recomputes effective durations and derived
// start/due dates over a tree snapshot.
//
// All functions are pure over the snapshot: they return a new snapshot
// and never mutate in place. Date-arithmetic failures degrade — the
// failing recomputation is skipped, a warning is reported, and the
// structural operation that triggered it still completes.
package schedule

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/tree"
)

// Warning reports a skipped schedule recomputation. Warnings are
// surfaced to the caller and logged; they are never errors.
type Warning struct {
	TaskID string
	Op     string
	Err    error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: %v", w.Op, w.TaskID, w.Err)
}

type Engine struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// AggregateDuration returns the effective duration of a node in days:
// a leaf contributes its declared duration, an internal node the sum of
// its children's effective durations, minimum 1.
//
// A corrupted parent graph turns the children index cyclic, so the
// descent carries a seen set; a revisited node contributes nothing.
func (e *Engine) AggregateDuration(s tree.Snapshot, id string) int {
	return e.aggregate(s, id, map[string]bool{})
}

func (e *Engine) aggregate(s tree.Snapshot, id string, seen map[string]bool) int {
	if seen[id] {
		return 0
	}
	seen[id] = true
	kids := s.Children(id)
	if len(kids) == 0 {
		t, ok := s.Get(id)
		if !ok {
			return 1
		}
		return t.EffectiveDuration()
	}
	sum := 0
	for _, k := range kids {
		sum += e.aggregate(s, k.ID, seen)
	}
	if sum < 1 {
		sum = 1
	}
	return sum
}

// Propagate recomputes the schedule of rootID's subtree from rootStart
// in a single depth-first pre-order pass: start dates are pushed down
// (the first child starts with its parent, each later sibling starts
// when the previous sibling's whole subtree ends) and due dates are
// pulled back up (an internal node is due when its last child is due).
// Every node below the root records its day offset from rootStart.
// After its children are processed, each node's effective duration is
// reconciled with its span, minimum 1 day.
func (e *Engine) Propagate(s tree.Snapshot, rootID string, rootStart model.Date) (tree.Snapshot, []Warning) {
	root, ok := s.Get(rootID)
	if !ok {
		return s, nil
	}
	origin, err := rootStart.Parse()
	if err != nil {
		w := Warning{TaskID: rootID, Op: "propagate", Err: err}
		e.warn(w)
		return s, []Warning{w}
	}

	updated := []model.Task{}
	seen := map[string]bool{}
	var walk func(t model.Task, start time.Time) time.Time
	walk = func(t model.Task, start time.Time) time.Time {
		// Same cycle guard as the aggregate descent.
		if seen[t.ID] {
			return start
		}
		seen[t.ID] = true
		kids := s.Children(t.ID)
		var end time.Time
		if len(kids) == 0 {
			end = start.AddDate(0, 0, t.EffectiveDuration())
		} else {
			cursor := start
			for _, k := range kids {
				cursor = walk(k, cursor)
			}
			end = cursor
		}
		days := int(end.Sub(start).Hours() / 24)
		if days < 1 {
			days = 1
			end = start.AddDate(0, 0, 1)
		}
		t.Start = model.DatePtr(model.DateOf(start))
		t.Due = model.DatePtr(model.DateOf(end))
		t.DurationDays = days
		if t.ID != rootID {
			t.OffsetDays = int(start.Sub(origin).Hours() / 24)
		}
		updated = append(updated, t)
		return end
	}
	walk(root, origin)
	return s.With(updated...), nil
}

// UpdateAncestorChain re-aggregates every ancestor of changedID, bottom
// to top. When an ancestor's stored effective duration is stale it is
// updated, and if that ancestor has a concrete start date its whole
// subtree schedule is re-propagated before the walk continues upward.
func (e *Engine) UpdateAncestorChain(s tree.Snapshot, changedID string) (tree.Snapshot, []Warning) {
	t, ok := s.Get(changedID)
	if !ok {
		return s, nil
	}
	return e.UpdateChainFromParent(s, t.ParentKey())
}

// UpdateChainFromParent is UpdateAncestorChain starting at an explicit
// parent id; deletions use it because the changed node no longer exists.
//
// The upward walk keeps a visited set: re-visiting an id means the
// parent graph is corrupted (cyclic), so the walk stops and reports
// instead of looping forever.
func (e *Engine) UpdateChainFromParent(s tree.Snapshot, parentID string) (tree.Snapshot, []Warning) {
	warnings := []Warning{}
	seen := map[string]bool{}
	cur := parentID
	for cur != "" {
		if seen[cur] {
			w := Warning{TaskID: cur, Op: "ancestor-walk", Err: fmt.Errorf("ancestor chain revisits %s: corrupted parent graph", cur)}
			e.warn(w)
			warnings = append(warnings, w)
			break
		}
		seen[cur] = true
		node, ok := s.Get(cur)
		if !ok {
			break
		}
		agg := e.AggregateDuration(s, cur)
		if agg != node.DurationDays {
			node.DurationDays = agg
			s = s.With(node)
			if node.Start != nil {
				next, ws := e.Propagate(s, cur, *node.Start)
				s = next
				warnings = append(warnings, ws...)
			}
		}
		cur = node.ParentKey()
	}
	return s, warnings
}

// ClearSchedule removes derived dates from rootID's whole subtree.
// Effective durations are left intact.
func (e *Engine) ClearSchedule(s tree.Snapshot, rootID string) tree.Snapshot {
	updated := []model.Task{}
	for _, id := range s.SubtreeIDs(rootID) {
		t, ok := s.Get(id)
		if !ok {
			continue
		}
		if t.Start == nil && t.Due == nil && t.OffsetDays == 0 {
			continue
		}
		t.Start = nil
		t.Due = nil
		t.OffsetDays = 0
		updated = append(updated, t)
	}
	if len(updated) == 0 {
		return s
	}
	return s.With(updated...)
}

func (e *Engine) warn(w Warning) {
	e.log.Warn("schedule computation degraded",
		zap.String("task", w.TaskID),
		zap.String("op", w.Op),
		zap.Error(w.Err),
	)
}
