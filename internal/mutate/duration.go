package mutate

import (
	"context"
	"time"

	"cadence-cli/internal/model"
	"cadence-cli/internal/schedule"
	"cadence-cli/internal/tree"
)

type EditResult struct {
	Snapshot tree.Snapshot
	Changed  []model.Task
	Warnings []schedule.Warning
}

// SetDuration edits a leaf's declared duration and ripples the change
// up the ancestor chain. Internal nodes are rejected: their effective
// duration is computed from children and never user-edited.
func (c *Coordinator) SetDuration(ctx context.Context, snap tree.Snapshot, taskID string, days int, now time.Time) (EditResult, error) {
	if days < 1 {
		return EditResult{}, ValidationError{TaskID: taskID, Reason: "duration must be at least 1 day"}
	}
	t, ok := snap.Get(taskID)
	if !ok {
		return EditResult{}, ValidationError{TaskID: taskID, Reason: "task not found"}
	}
	if snap.HasChildren(t.ID) {
		return EditResult{}, ValidationError{TaskID: taskID, Reason: "duration of a parent task is computed from its children"}
	}

	t.DefaultDuration = days
	t.DurationDays = days
	t.UpdatedAt = now
	next := snap.With(t)

	warnings := []schedule.Warning{}
	if t.Start != nil {
		var ws []schedule.Warning
		next, ws = c.eng.Propagate(next, t.ID, *t.Start)
		warnings = append(warnings, ws...)
	}
	next, ws := c.eng.UpdateAncestorChain(next, t.ID)
	warnings = append(warnings, ws...)

	changed := tree.Diff(snap, next)
	if err := c.persistRows(ctx, "duration", changed); err != nil {
		return EditResult{Snapshot: snap}, err
	}
	return EditResult{Snapshot: next, Changed: changed, Warnings: warnings}, nil
}

// SetStart sets (or, with nil, clears) a task's concrete start date and
// recomputes the derived schedule of its subtree.
func (c *Coordinator) SetStart(ctx context.Context, snap tree.Snapshot, taskID string, start *model.Date, now time.Time) (EditResult, error) {
	t, ok := snap.Get(taskID)
	if !ok {
		return EditResult{}, ValidationError{TaskID: taskID, Reason: "task not found"}
	}

	var next tree.Snapshot
	warnings := []schedule.Warning{}
	if start == nil {
		next = c.eng.ClearSchedule(snap, t.ID)
	} else {
		t.Start = start
		t.UpdatedAt = now
		next = snap.With(t)
		var ws []schedule.Warning
		next, ws = c.eng.Propagate(next, t.ID, *start)
		warnings = append(warnings, ws...)
	}
	next, ws := c.eng.UpdateAncestorChain(next, t.ID)
	warnings = append(warnings, ws...)

	changed := tree.Diff(snap, next)
	if err := c.persistRows(ctx, "start", changed); err != nil {
		return EditResult{Snapshot: snap}, err
	}
	return EditResult{Snapshot: next, Changed: changed, Warnings: warnings}, nil
}
