package tree

import (
	"testing"

	"cadence-cli/internal/model"
)

func TestAudit_CleanTree(t *testing.T) {
	snap := Build([]model.Task{
		auditTask("r", "", 10000),
		auditTask("a", "r", 10000),
		auditTask("b", "r", 20000),
	})
	rep := Audit(snap)
	if len(rep.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", rep.Issues)
	}
}

func TestAudit_FindsCorruption(t *testing.T) {
	orphan := auditTask("orphan", "ghost", 10000)
	dupA := auditTask("d1", "r", 500)
	dupB := auditTask("d2", "r", 500)
	badDate := auditTask("bad", "r", 30000)
	badDate.Start = model.DatePtr("next tuesday")
	cycA := auditTask("ca", "cb", 10000)
	cycB := auditTask("cb", "ca", 10000)

	rep := Audit(Build([]model.Task{
		auditTask("r", "", 10000),
		orphan, dupA, dupB, badDate, cycA, cycB,
	}))

	if !rep.HasErrors() {
		t.Fatalf("expected errors, got %v", rep.Issues)
	}
	want := map[string]bool{}
	for _, i := range rep.Issues {
		want[i.TaskID+":"+i.Severity] = true
	}
	for _, k := range []string{"orphan:error", "bad:warning", "ca:error", "cb:error"} {
		if !want[k] {
			t.Errorf("missing issue %s in %v", k, rep.Issues)
		}
	}
	dup := false
	for _, i := range rep.Issues {
		if (i.TaskID == "d1" || i.TaskID == "d2") && i.Severity == "warning" {
			dup = true
		}
	}
	if !dup {
		t.Errorf("duplicate sibling position not reported: %v", rep.Issues)
	}
}

func auditTask(id, parent string, pos int64) model.Task {
	t := model.Task{ID: id, Partition: model.PartitionInstance, Pos: pos, Title: id}
	if parent != "" {
		t.ParentID = model.StringPtr(parent)
	}
	return t
}
