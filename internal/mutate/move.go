package mutate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
	"cadence-cli/internal/schedule"
	"cadence-cli/internal/tree"
)

// MoveState tracks an interactive move through its lifecycle.
type MoveState string

const (
	StateIdle         MoveState = "idle"
	StateValidating   MoveState = "validating"
	StateSlotComputed MoveState = "slot-computed"
	StateCommitting   MoveState = "committing"
	StateCommitted    MoveState = "committed"
	StateRolledBack   MoveState = "rolled-back"
)

type MoveRequest struct {
	TaskID string

	// NewParentID is the candidate parent; nil reparents to a partition
	// root.
	NewParentID *string

	// InsertAt is the index within the target sibling set (with the
	// moved task removed). Negative or past-the-end appends.
	InsertAt int
}

type MoveResult struct {
	State    MoveState
	Snapshot tree.Snapshot
	NewPos   int64

	// Renormalized reports that the target sibling set was respaced on
	// the way. Those writes are persisted independently of the final
	// move write; a later rollback does not undo them.
	Renormalized bool

	Changed  []model.Task
	Warnings []schedule.Warning
}

// Move reparents/reorders one task.
//
// Validation failures and slot conflicts abort with no mutation. The
// move itself is applied optimistically to the snapshot and rolled back
// if the position write fails. After a committed move both the old and
// the new ancestor chains are recomputed and the resulting row diff is
// persisted.
func (c *Coordinator) Move(ctx context.Context, snap tree.Snapshot, req MoveRequest, now time.Time) (MoveResult, error) {
	st := StateIdle
	fail := func(err error) (MoveResult, error) {
		return MoveResult{State: st, Snapshot: snap}, err
	}

	moved, ok := snap.Get(req.TaskID)
	if !ok {
		return fail(ValidationError{TaskID: req.TaskID, Reason: "task not found"})
	}
	oldParentKey := moved.ParentKey()

	st = StateValidating
	newParentKey := parentKeyOf(req.NewParentID)
	if newParentKey != "" {
		target, ok := snap.Get(newParentKey)
		if !ok {
			st = StateIdle
			return fail(ValidationError{TaskID: req.TaskID, Reason: "target parent not found"})
		}
		if target.Partition != moved.Partition {
			st = StateIdle
			return fail(ValidationError{TaskID: req.TaskID, Reason: "move crosses partitions"})
		}
		if target.ID == moved.ID || snap.IsDescendant(moved.ID, target.ID) {
			st = StateIdle
			return fail(ValidationError{TaskID: req.TaskID, Reason: "target is inside the moved subtree"})
		}
	}

	sibs := siblingSet(snap, newParentKey, moved.Partition, moved.ID)
	insertAt := req.InsertAt
	if insertAt < 0 || insertAt > len(sibs) {
		insertAt = len(sibs)
	}

	renormalized := false
	pos, err := order.SlotAt(sibs, insertAt)
	if errors.Is(err, order.ErrNeedsRenormalize) {
		plan := order.Renormalize(sibs)
		respaced := make([]model.Task, 0, len(plan))
		for _, sib := range sibs {
			if newPos, ok := plan[sib.ID]; ok {
				sib.Pos = newPos
				sib.UpdatedAt = now
				respaced = append(respaced, sib)
			}
		}
		// Renormalization writes land before the final move write; this
		// is a known seam, not an atomic unit.
		if err := c.persistRows(ctx, "renormalize", respaced); err != nil {
			st = StateIdle
			return fail(err)
		}
		snap = snap.With(respaced...)
		renormalized = true

		sibs = siblingSet(snap, newParentKey, moved.Partition, moved.ID)
		pos, err = order.SlotAt(sibs, insertAt)
		if errors.Is(err, order.ErrNeedsRenormalize) {
			// A respaced sibling set is Step-spaced, so a second dense
			// result cannot happen unless the snapshot itself is broken
			// (duplicate rows, foreign ids in the sibling index). Bail
			// out rather than write a colliding key.
			st = StateIdle
			return fail(ConflictError{TaskID: moved.ID, ParentID: newParentKey})
		}
	}
	if err != nil {
		st = StateIdle
		return fail(err)
	}
	st = StateSlotComputed

	st = StateCommitting
	updated := moved
	updated.ParentID = req.NewParentID
	updated.Pos = pos
	updated.UpdatedAt = now
	next := snap.With(updated)

	if err := c.store.UpdatePosition(ctx, moved.ID, pos, req.NewParentID); err != nil {
		st = StateRolledBack
		c.log.Warn("move rolled back",
			zap.String("task", moved.ID),
			zap.Error(err),
		)
		return MoveResult{State: st, Snapshot: snap, Renormalized: renormalized},
			PersistenceError{Op: "move", Err: err}
	}
	st = StateCommitted

	// Reconcile durations and dates on both affected chains.
	base := next
	warnings := []schedule.Warning{}
	next, ws := c.eng.UpdateChainFromParent(next, oldParentKey)
	warnings = append(warnings, ws...)
	if newParentKey != oldParentKey {
		next, ws = c.eng.UpdateChainFromParent(next, newParentKey)
		warnings = append(warnings, ws...)
	}

	changed := tree.Diff(base, next)
	res := MoveResult{
		State:        st,
		Snapshot:     next,
		NewPos:       pos,
		Renormalized: renormalized,
		Changed:      changed,
		Warnings:     warnings,
	}
	if err := c.persistRows(ctx, "move-reconcile", changed); err != nil {
		// The move row itself is committed; only derived fields failed
		// to persist. A later full recomputation repairs them.
		return res, err
	}
	c.log.Debug("move committed",
		zap.String("task", moved.ID),
		zap.String("parent", newParentKey),
		zap.Int64("pos", pos),
		zap.Bool("renormalized", renormalized),
	)
	return res, nil
}
