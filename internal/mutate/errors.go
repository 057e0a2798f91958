package mutate

import "fmt"

// ValidationError rejects a mutation before anything is touched:
// cross-partition moves, cycles, edits of computed fields, unknown ids.
// It never reaches persistence and leaves no state change.
type ValidationError struct {
	TaskID string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid mutation for %s: %s", e.TaskID, e.Reason)
}

// ConflictError means the sibling set stayed too dense even after one
// renormalization pass. The move is aborted with no mutation applied.
type ConflictError struct {
	TaskID   string
	ParentID string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("no room for %s under %q after renormalization", e.TaskID, e.ParentID)
}

// PersistenceError wraps a failed collaborator call. It is transient
// and retryable; when it surfaces, the in-memory snapshot has been
// rolled back to its pre-mutation value.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }
