package mutate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"cadence-cli/internal/clone"
	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
	"cadence-cli/internal/schedule"
	"cadence-cli/internal/store"
	"cadence-cli/internal/tree"
)

type PasteRequest struct {
	SourceID    string
	NewParentID *string
	Partition   model.Partition
	ActorID     string
	Overrides   clone.Overrides
}

type PasteResult struct {
	NewRootID string
	Count     int
	Snapshot  tree.Snapshot
	Changed   []model.Task
	Warnings  []schedule.Warning

	// Atomic reports that the store-side transactional clone was used
	// rather than the in-process fallback.
	Atomic bool
}

// Paste clones a subtree (typically template → instance) under a new
// parent. The store's atomic clone is preferred; stores without one
// fall back to the in-process cloner plus per-row inserts. Either way
// the target sibling set is then de-conflicted and the ancestor chain
// recomputed.
func (c *Coordinator) Paste(ctx context.Context, snap tree.Snapshot, req PasteRequest, now time.Time) (PasteResult, error) {
	parentKey := parentKeyOf(req.NewParentID)
	if parentKey != "" {
		parent, ok := snap.Get(parentKey)
		if !ok {
			return PasteResult{}, ValidationError{TaskID: parentKey, Reason: "target parent not found"}
		}
		if parent.Partition != req.Partition {
			return PasteResult{}, ValidationError{TaskID: parentKey, Reason: "target parent is in another partition"}
		}
	}

	spec := store.CloneSpec{
		NewParentID: req.NewParentID,
		Partition:   req.Partition,
		ActorID:     req.ActorID,
		Title:       req.Overrides.Title,
		Description: req.Overrides.Description,
		Start:       req.Overrides.Start,
		Due:         req.Overrides.Due,
	}

	var cloned []model.Task
	var newRootID string
	atomic := true
	newRootID, count, err := c.store.CloneSubtree(ctx, req.SourceID, spec)
	switch {
	case err == nil:
		cloned, err = c.loadSubtree(ctx, newRootID)
		if err != nil {
			return PasteResult{}, PersistenceError{Op: "clone-readback", Err: err}
		}
	case errors.Is(err, store.ErrCloneUnsupported):
		atomic = false
		root, gerr := c.store.GetTask(ctx, req.SourceID)
		if gerr != nil {
			return PasteResult{}, ValidationError{TaskID: req.SourceID, Reason: "source not found"}
		}
		res, cerr := clone.Subtree(ctx, root, req.NewParentID, req.Partition, req.ActorID,
			req.Overrides, c.store.FetchChildren, c.store.NextID, now)
		if cerr != nil {
			return PasteResult{}, cerr
		}
		for _, t := range res.Cloned {
			if perr := c.store.CreateTask(ctx, t); perr != nil {
				return PasteResult{}, PersistenceError{Op: "clone-insert", Err: perr}
			}
		}
		cloned = res.Cloned
		newRootID = res.NewRootID
		count = res.Count()
	default:
		return PasteResult{}, PersistenceError{Op: "clone", Err: err}
	}

	next := snap.With(cloned...)
	base := next
	warnings := []schedule.Warning{}

	// Copied position keys may collide with existing siblings at the
	// target; close conflicts with a renormalization pass.
	sibs := siblingSet(next, parentKey, req.Partition, "")
	if hasDuplicatePos(sibs) {
		plan := order.Renormalize(sibs)
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

	if root, ok := next.Get(newRootID); ok && root.Start != nil {
		var ws []schedule.Warning
		next, ws = c.eng.Propagate(next, newRootID, *root.Start)
		warnings = append(warnings, ws...)
	}
	next, ws := c.eng.UpdateAncestorChain(next, newRootID)
	warnings = append(warnings, ws...)

	changed := tree.Diff(base, next)
	if err := c.persistRows(ctx, "paste-reconcile", changed); err != nil {
		return PasteResult{NewRootID: newRootID, Count: count, Snapshot: base, Atomic: atomic}, err
	}
	c.log.Debug("pasted subtree",
		zap.String("source", req.SourceID),
		zap.String("newRoot", newRootID),
		zap.Int("count", count),
		zap.Bool("atomic", atomic),
	)
	return PasteResult{
		NewRootID: newRootID,
		Count:     count,
		Snapshot:  next,
		Changed:   changed,
		Warnings:  warnings,
		Atomic:    atomic,
	}, nil
}

// loadSubtree reads back a freshly cloned subtree from the store.
func (c *Coordinator) loadSubtree(ctx context.Context, rootID string) ([]model.Task, error) {
	root, err := c.store.GetTask(ctx, rootID)
	if err != nil {
		return nil, err
	}
	out := []model.Task{root}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		kids, err := c.store.FetchChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, k := range kids {
			out = append(out, k)
			queue = append(queue, k.ID)
		}
	}
	return out, nil
}

func hasDuplicatePos(sibs []model.Task) bool {
	seen := map[int64]bool{}
	for _, s := range sibs {
		if seen[s.Pos] {
			return true
		}
		seen[s.Pos] = true
	}
	return false
}
