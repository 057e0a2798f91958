package tree

import "fmt"

// Issue is one integrity finding from Audit.
type Issue struct {
	TaskID   string `json:"taskId"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Report is the result of an integrity audit.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == "error" {
			return true
		}
	}
	return false
}

func (r *Report) add(severity, taskID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		TaskID:   taskID,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Audit checks structural invariants of a snapshot: parents must exist,
// a child's partition must match its parent's, sibling position keys
// must be unique, stored dates must parse, and every node must be
// reachable from a root (an unreachable node means a parent cycle).
func Audit(s Snapshot) Report {
	var r Report

	for _, t := range s.Tasks() {
		if key := t.ParentKey(); key != "" {
			parent, ok := s.Get(key)
			if !ok {
				r.add("error", t.ID, "parent %s does not exist", key)
				continue
			}
			if parent.Partition != t.Partition {
				r.add("error", t.ID, "partition %s differs from parent's %s", t.Partition, parent.Partition)
			}
		}
		if t.Start != nil && !t.Start.Valid() {
			r.add("warning", t.ID, "unparseable start date %q", *t.Start)
		}
		if t.Due != nil && !t.Due.Valid() {
			r.add("warning", t.ID, "unparseable due date %q", *t.Due)
		}
	}

	for parent, ids := range s.children {
		seen := map[int64]string{}
		for _, id := range ids {
			t, ok := s.Get(id)
			if !ok {
				continue
			}
			if other, dup := seen[t.Pos]; dup {
				r.add("warning", id, "position %d collides with sibling %s under %q", t.Pos, other, parent)
			}
			seen[t.Pos] = id
		}
	}

	reachable := map[string]bool{}
	var mark func(id string)
	mark = func(id string) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, k := range s.Children(id) {
			mark(k.ID)
		}
	}
	for _, id := range s.children[""] {
		mark(id)
	}
	for _, t := range s.Tasks() {
		if !reachable[t.ID] {
			r.add("error", t.ID, "unreachable from any root (parent cycle)")
		}
	}

	return r
}
