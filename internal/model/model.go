package model

import (
	"fmt"
	"strings"
	"time"
)

// Partition separates template trees (reusable plan definitions) from
// instance trees (live plans). A subtree never mixes partitions.
type Partition string

const (
	PartitionTemplate Partition = "template"
	PartitionInstance Partition = "instance"
)

func ParsePartition(s string) (Partition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "template":
		return PartitionTemplate, nil
	case "instance", "":
		return PartitionInstance, nil
	default:
		return "", fmt.Errorf("invalid partition: %q (expected template|instance)", s)
	}
}

type Task struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parentId,omitempty"`
	Partition Partition `json:"partition"`

	// Pos orders a task within its sibling set (same parent + partition).
	// Keys are spaced integers; gaps leave room for insertions without
	// rewriting neighbors.
	Pos int64 `json:"pos"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// DefaultDuration is the user-declared duration (days) of a leaf.
	// DurationDays is the effective duration: DefaultDuration for leaves,
	// the sum of children's effective durations for internal nodes.
	DefaultDuration int `json:"defaultDuration"`
	DurationDays    int `json:"durationDays"`

	// Start/Due are derived and present only when an ancestor chain has a
	// concrete start date. OffsetDays records the day offset of this
	// task's start from the schedule root's start.
	Start      *Date `json:"start,omitempty"`
	Due        *Date `json:"due,omitempty"`
	OffsetDays int   `json:"daysFromStartUntilDue"`

	// Done is mutated by collaborators outside this engine; consumed
	// read-only here.
	Done bool `json:"done"`

	OwnerActorID string    `json:"ownerActorId,omitempty"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ParentKey returns the parent id or "" for partition roots.
func (t Task) ParentKey() string {
	if t.ParentID == nil {
		return ""
	}
	return strings.TrimSpace(*t.ParentID)
}

// EffectiveDuration returns the duration a task contributes when it has
// no children: the declared default, falling back to the stored
// effective duration, minimum 1 day.
func (t Task) EffectiveDuration() int {
	if t.DefaultDuration > 0 {
		return t.DefaultDuration
	}
	if t.DurationDays > 0 {
		return t.DurationDays
	}
	return 1
}

// StringPtr is a small helper for the many nullable id fields.
func StringPtr(s string) *string { return &s }
