package tree

import (
	"sort"

	"cadence-cli/internal/model"
)

// Diff returns the tasks in next that are new or differ from their row
// in prev, sorted by id. This is the single path from a transformed
// snapshot to a persistence write set: callers persist exactly these
// rows, one call per task.
//
// Deletions are not part of the diff; coordinators track removed ids
// explicitly.
func Diff(prev, next Snapshot) []model.Task {
	out := []model.Task{}
	for id, t := range next.tasks {
		old, ok := prev.tasks[id]
		if !ok || !taskEqual(old, t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func taskEqual(a, b model.Task) bool {
	if a.ID != b.ID ||
		a.Partition != b.Partition ||
		a.Pos != b.Pos ||
		a.Title != b.Title ||
		a.Description != b.Description ||
		a.DefaultDuration != b.DefaultDuration ||
		a.DurationDays != b.DurationDays ||
		a.OffsetDays != b.OffsetDays ||
		a.Done != b.Done ||
		a.OwnerActorID != b.OwnerActorID ||
		a.CreatedBy != b.CreatedBy {
		return false
	}
	if !strPtrEqual(a.ParentID, b.ParentID) {
		return false
	}
	if !dateVal(a.Start).Equal(dateVal(b.Start)) || !dateVal(a.Due).Equal(dateVal(b.Due)) {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) || !a.UpdatedAt.Equal(b.UpdatedAt) {
		return false
	}
	return true
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type dateValCmp struct {
	set bool
	d   model.Date
}

func dateVal(d *model.Date) dateValCmp {
	if d == nil {
		return dateValCmp{}
	}
	return dateValCmp{set: true, d: *d}
}

func (v dateValCmp) Equal(o dateValCmp) bool {
	return v.set == o.set && v.d == o.d
}
