package mutate

import (
	"context"
	"strings"
	"time"

	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
	"cadence-cli/internal/tree"
)

type AddRequest struct {
	ParentID    *string
	Partition   model.Partition
	Title       string
	Description string
	Duration    int
	ActorID     string
}

type AddResult struct {
	Task     model.Task
	Snapshot tree.Snapshot
	Changed  []model.Task
}

// Add creates a new leaf at the end of the target sibling set. A task
// is born a leaf; attaching it may flip its parent to internal, so the
// ancestor chain is recomputed afterwards.
func (c *Coordinator) Add(ctx context.Context, snap tree.Snapshot, req AddRequest, now time.Time) (AddResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return AddResult{}, ValidationError{Reason: "missing title"}
	}
	parentKey := parentKeyOf(req.ParentID)
	if parentKey != "" {
		parent, ok := snap.Get(parentKey)
		if !ok {
			return AddResult{}, ValidationError{TaskID: parentKey, Reason: "parent not found"}
		}
		if parent.Partition != req.Partition {
			return AddResult{}, ValidationError{TaskID: parentKey, Reason: "parent is in another partition"}
		}
	}

	days := req.Duration
	if days < 1 {
		days = 1
	}
	sibs := siblingSet(snap, parentKey, req.Partition, "")
	t := model.Task{
		ID:              c.store.NextID(),
		ParentID:        req.ParentID,
		Partition:       req.Partition,
		Pos:             order.AppendKey(sibs),
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		DefaultDuration: days,
		DurationDays:    days,
		OwnerActorID:    req.ActorID,
		CreatedBy:       req.ActorID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.store.CreateTask(ctx, t); err != nil {
		return AddResult{}, PersistenceError{Op: "create", Err: err}
	}

	base := snap.With(t)
	next, _ := c.eng.UpdateAncestorChain(base, t.ID)
	changed := tree.Diff(base, next)
	if err := c.persistRows(ctx, "create-reconcile", changed); err != nil {
		return AddResult{Task: t, Snapshot: base}, err
	}
	return AddResult{Task: t, Snapshot: next, Changed: changed}, nil
}
