// Package clone deep-copies a task subtree into a new location with
// fresh identifiers.
//
// The cloner is pure over its collaborators: children are fetched
// lazily through an injected lookup and ids are minted through an
// injected generator, so it works against any store (or a snapshot).
package clone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cadence-cli/internal/model"
)

// FetchChildren returns the ordered children of a source task.
type FetchChildren func(ctx context.Context, parentID string) ([]model.Task, error)

// NextID mints a fresh identifier. It must never return a source id.
type NextID func() string

// Overrides apply to the cloned root only; descendants are copied as-is.
type Overrides struct {
	Title       string
	Description string
	Start       *model.Date
	Due         *model.Date
}

type Result struct {
	NewRootID string
	Cloned    []model.Task
}

// Count returns the number of cloned tasks, the source subtree size.
func (r Result) Count() int { return len(r.Cloned) }

// Subtree clones root and all descendants under newParentID in
// newPartition, owned by actorID.
//
// Every cloned node gets a fresh id and its parent pointer rewired to
// the clone of its source parent. Position keys are copied verbatim so
// relative sibling order is preserved; if the target location already
// has conflicting keys, renormalizing is the caller's job. Instance
// state is reset: completion cleared, derived dates cleared unless the
// overrides provide root-level values.
func Subtree(ctx context.Context, root model.Task, newParentID *string, newPartition model.Partition, actorID string, ov Overrides, fetch FetchChildren, nextID NextID, now time.Time) (Result, error) {
	if strings.TrimSpace(root.ID) == "" {
		return Result{}, errors.New("clone: missing source root")
	}
	if fetch == nil || nextID == nil {
		return Result{}, errors.New("clone: missing collaborators")
	}

	var out Result
	var walk func(src model.Task, parentID *string, isRoot bool) error
	walk = func(src model.Task, parentID *string, isRoot bool) error {
		id := strings.TrimSpace(nextID())
		if id == "" || id == src.ID {
			return fmt.Errorf("clone: id generator returned unusable id %q", id)
		}

		dst := src
		dst.ID = id
		dst.ParentID = parentID
		dst.Partition = newPartition
		dst.Done = false
		dst.Start = nil
		dst.Due = nil
		dst.OffsetDays = 0
		dst.OwnerActorID = actorID
		dst.CreatedBy = actorID
		dst.CreatedAt = now
		dst.UpdatedAt = now

		if isRoot {
			if strings.TrimSpace(ov.Title) != "" {
				dst.Title = ov.Title
			}
			if strings.TrimSpace(ov.Description) != "" {
				dst.Description = ov.Description
			}
			dst.Start = ov.Start
			dst.Due = ov.Due
		}
		out.Cloned = append(out.Cloned, dst)
		if isRoot {
			out.NewRootID = id
		}

		kids, err := fetch(ctx, src.ID)
		if err != nil {
			return fmt.Errorf("clone: fetch children of %s: %w", src.ID, err)
		}
		for _, k := range kids {
			if err := walk(k, model.StringPtr(id), false); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, newParentID, true); err != nil {
		return Result{}, err
	}
	return out, nil
}
