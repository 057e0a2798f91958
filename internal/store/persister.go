// Package store persists task trees.
//
// Persister is the collaborator contract the mutation coordinators talk
// to. Tree computation itself never touches storage: coordinators read
// a snapshot, transform it, diff, and emit only the changed rows
// through this interface.
package store

import (
	"context"
	"errors"

	"cadence-cli/internal/model"
)

var (
	ErrNotFound = errors.New("task not found")

	// ErrCloneUnsupported is returned by stores without an atomic
	// subtree-clone primitive; callers fall back to the in-process
	// cloner plus per-row inserts.
	ErrCloneUnsupported = errors.New("store has no atomic subtree clone")
)

// CloneSpec parameterizes an atomic server-side subtree clone.
// Overrides apply to the cloned root only.
type CloneSpec struct {
	NewParentID *string
	Partition   model.Partition
	ActorID     string
	Title       string
	Description string
	Start       *model.Date
	Due         *model.Date
}

type Persister interface {
	// ListPartition returns every task of one partition; coordinators
	// build their working snapshot from it.
	ListPartition(ctx context.Context, p model.Partition) ([]model.Task, error)

	// ListSiblings returns one sibling set ordered by position
	// ascending. parentID nil selects partition roots.
	ListSiblings(ctx context.Context, parentID *string, p model.Partition) ([]model.Task, error)

	// FetchChildren returns the ordered children of parentID regardless
	// of partition; the in-process cloner walks subtrees with it.
	FetchChildren(ctx context.Context, parentID string) ([]model.Task, error)

	// GetTask loads a single task, ErrNotFound when absent.
	GetTask(ctx context.Context, id string) (model.Task, error)

	CreateTask(ctx context.Context, t model.Task) error

	// UpdatePosition persists a reparent/reorder of a single task.
	UpdatePosition(ctx context.Context, id string, pos int64, parentID *string) error

	// UpdateFields persists one changed row. Coordinators batch a diff
	// into independent per-row calls; the batch is not atomic.
	UpdateFields(ctx context.Context, t model.Task) error

	DeleteTask(ctx context.Context, id string) error

	// CloneSubtree deep-copies a subtree transactionally on the store
	// side, returning the new root id and cloned count.
	CloneSubtree(ctx context.Context, rootID string, spec CloneSpec) (string, int, error)

	// NextID mints a fresh task id for client-side row creation.
	NextID() string
}
