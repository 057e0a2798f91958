package mutate

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
	"cadence-cli/internal/schedule"
	"cadence-cli/internal/tree"
)

type RemovePlan struct {
	// RemovedIDs lists the deleted subtree in pre-order.
	RemovedIDs []string
	Snapshot   tree.Snapshot
	Changed    []model.Task
	Warnings   []schedule.Warning
}

// PlanRemove computes the effect of deleting a task (and, when cascade
// is set, its whole subtree) without touching storage: the node(s) are
// dropped, the orphaned sibling set is renormalized to close the gap,
// and the former ancestor chain is recomputed.
func PlanRemove(eng *schedule.Engine, snap tree.Snapshot, taskID string, cascade bool, now time.Time) (RemovePlan, error) {
	t, ok := snap.Get(taskID)
	if !ok {
		return RemovePlan{}, ValidationError{TaskID: taskID, Reason: "task not found"}
	}
	if !cascade && snap.HasChildren(t.ID) {
		return RemovePlan{}, ValidationError{TaskID: taskID, Reason: "task has children; cascade required"}
	}

	ids := []string{t.ID}
	if cascade {
		ids = snap.SubtreeIDs(t.ID)
	}
	next := snap.Without(ids...)
	base := next

	sibs := siblingSet(next, t.ParentKey(), t.Partition, "")
	plan := order.Renormalize(sibs)
	if len(plan) > 0 {
		respaced := make([]model.Task, 0, len(plan))
		for _, sib := range sibs {
			if pos, ok := plan[sib.ID]; ok {
				sib.Pos = pos
				sib.UpdatedAt = now
				respaced = append(respaced, sib)
			}
		}
		next = next.With(respaced...)
	}

	next, warnings := eng.UpdateChainFromParent(next, t.ParentKey())

	return RemovePlan{
		RemovedIDs: ids,
		Snapshot:   next,
		Changed:    tree.Diff(base, next),
		Warnings:   warnings,
	}, nil
}

// Remove plans and persists a (cascading) delete. Row deletes run
// leaf-first so a child row never outlives its parent's removal
// mid-batch; then the surviving changed rows are written.
func (c *Coordinator) Remove(ctx context.Context, snap tree.Snapshot, taskID string, cascade bool, now time.Time) (RemovePlan, error) {
	plan, err := PlanRemove(c.eng, snap, taskID, cascade, now)
	if err != nil {
		return RemovePlan{}, err
	}

	for i := len(plan.RemovedIDs) - 1; i >= 0; i-- {
		id := plan.RemovedIDs[i]
		if err := c.store.DeleteTask(ctx, id); err != nil {
			c.log.Warn("cascade delete interrupted",
				zap.String("task", id),
				zap.Int("deleted", len(plan.RemovedIDs)-1-i),
				zap.Error(err),
			)
			return RemovePlan{Snapshot: snap}, PersistenceError{Op: "delete", Err: err}
		}
	}
	if err := c.persistRows(ctx, "delete-reconcile", plan.Changed); err != nil {
		return plan, err
	}
	c.log.Debug("removed subtree", zap.String("task", taskID), zap.Int("count", len(plan.RemovedIDs)))
	return plan, nil
}
