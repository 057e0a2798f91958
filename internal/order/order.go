// Package order computes sibling position keys.
//
// Keys are spaced integers (multiples of Step for a freshly normalized
// set). Inserting between two siblings takes the integer midpoint of the
// neighboring keys; when the gap is too small to split, the whole
// sibling set must be renormalized before retrying.
package order

import (
	"errors"
	"sort"

	"cadence-cli/internal/model"
)

const (
	// Step is the spacing between keys in a normalized sibling set.
	Step int64 = 10000

	// MinGap is the smallest gap ComputeSlot is willing to split.
	MinGap int64 = 2
)

// ErrNeedsRenormalize signals that the sibling set has no room at the
// requested slot. The caller renormalizes once and retries; a second
// signal for the same slot is a hard conflict.
var ErrNeedsRenormalize = errors.New("no room between sibling keys: renormalize required")

// ComputeSlot returns a key strictly between prev and next.
//
// prev is the key of the sibling immediately before the insertion point
// (0 when inserting first). next is the key immediately after; nil means
// "insert at end", in which case a synthetic upper bound of prev+2*Step
// keeps repeated appends from exhausting headroom.
func ComputeSlot(prev int64, next *int64) (int64, error) {
	upper := prev + 2*Step
	if next != nil {
		upper = *next
	}
	if upper-prev < MinGap {
		return 0, ErrNeedsRenormalize
	}
	return prev + (upper-prev)/2, nil
}

// SortSiblings orders tasks the way every sibling scan in the engine
// does: position key, then creation time, then id.
func SortSiblings(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Renormalize reassigns i*Step to the i-th sibling (1-based) in the
// given order and returns the keys that actually change, keyed by task
// id. Renormalizing an already-normal set returns an empty map.
//
// This is the only operation allowed to touch every sibling's key at
// once. Callers pass siblings already in intended order; relative order
// is preserved exactly.
func Renormalize(ordered []model.Task) map[string]int64 {
	out := map[string]int64{}
	for i, t := range ordered {
		want := int64(i+1) * Step
		if t.Pos != want {
			out[t.ID] = want
		}
	}
	return out
}

// SlotAt computes a key for inserting into ordered at index insertAt
// (0..len). ordered must not contain the task being placed.
func SlotAt(ordered []model.Task, insertAt int) (int64, error) {
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(ordered) {
		insertAt = len(ordered)
	}
	var prev int64
	if insertAt > 0 {
		prev = ordered[insertAt-1].Pos
	}
	var next *int64
	if insertAt < len(ordered) {
		next = &ordered[insertAt].Pos
	}
	return ComputeSlot(prev, next)
}

// AppendKey returns the key for appending after the last of ordered.
func AppendKey(ordered []model.Task) int64 {
	var prev int64
	if len(ordered) > 0 {
		prev = ordered[len(ordered)-1].Pos
	}
	k, err := ComputeSlot(prev, nil)
	if err != nil {
		// Appending always has headroom: the synthetic upper bound is
		// prev+2*Step, so the gap is never below MinGap.
		return prev + Step
	}
	return k
}
