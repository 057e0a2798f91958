// Package mutate coordinates structural tree mutations.
//
// Every mutation follows the same sequence: read a snapshot, transform
// it with pure functions (order, schedule, clone), diff the result
// against the original, and emit only the changed rows to the store.
// The snapshot is a value; "optimistic update + rollback on failure" is
// the sole consistency mechanism.
package mutate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/schedule"
	"cadence-cli/internal/store"
	"cadence-cli/internal/tree"
)

type Coordinator struct {
	store store.Persister
	eng   *schedule.Engine
	log   *zap.Logger
}

func New(p store.Persister, eng *schedule.Engine, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if eng == nil {
		eng = schedule.New(log)
	}
	return &Coordinator{store: p, eng: eng, log: log}
}

// siblingSet returns the ordered siblings at a location, optionally
// excluding one id. Partition roots of other partitions are filtered
// out; nested sibling sets are partition-homogeneous by invariant.
func siblingSet(s tree.Snapshot, parentKey string, p model.Partition, excludeID string) []model.Task {
	var kids []model.Task
	if parentKey == "" {
		kids = s.Roots(p)
	} else {
		kids = s.Children(parentKey)
	}
	out := make([]model.Task, 0, len(kids))
	for _, k := range kids {
		if excludeID != "" && k.ID == excludeID {
			continue
		}
		out = append(out, k)
	}
	return out
}

// persistRows emits one UpdateFields call per changed row. The batch is
// not atomic; the first failure is returned.
func (c *Coordinator) persistRows(ctx context.Context, op string, rows []model.Task) error {
	for _, r := range rows {
		if err := c.store.UpdateFields(ctx, r); err != nil {
			return PersistenceError{Op: op, Err: err}
		}
	}
	return nil
}

func parentKeyOf(id *string) string {
	if id == nil {
		return ""
	}
	return strings.TrimSpace(*id)
}
