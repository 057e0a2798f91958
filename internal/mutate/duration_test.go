package mutate

import (
	"context"
	"errors"
	"testing"

	"cadence-cli/internal/model"
)

func TestSetDuration_RipplesUpTheChain(t *testing.T) {
	c, mem, snap := newFixture(t,
		task("root", "", 10000, 0),
		task("a", "root", 10000, 2),
		task("b", "root", 20000, 5),
	)

	res, err := c.SetDuration(context.Background(), snap, "a", 6, now)
	if err != nil {
		t.Fatalf("SetDuration: %v", err)
	}

	a, _ := res.Snapshot.Get("a")
	if a.DefaultDuration != 6 || a.DurationDays != 6 {
		t.Fatalf("leaf = %d/%d, want 6/6", a.DefaultDuration, a.DurationDays)
	}
	root, _ := res.Snapshot.Get("root")
	if root.DurationDays != 11 {
		t.Fatalf("root duration = %d, want 11", root.DurationDays)
	}

	stored, _ := mem.GetTask(context.Background(), "root")
	if stored.DurationDays != 11 {
		t.Fatalf("ripple not persisted: %d", stored.DurationDays)
	}
}

func TestSetDuration_InternalNodeRejected(t *testing.T) {
	c, _, snap := newFixture(t,
		task("p", "", 10000, 0),
		task("k", "p", 10000, 1),
	)
	_, err := c.SetDuration(context.Background(), snap, "p", 4, now)
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestSetDuration_MinimumOneDay(t *testing.T) {
	c, _, snap := newFixture(t, task("a", "", 10000, 2))
	if _, err := c.SetDuration(context.Background(), snap, "a", 0, now); err == nil {
		t.Fatalf("accepted a zero-day duration")
	}
}

func TestSetStart_PropagatesDownAndReconcilesUp(t *testing.T) {
	c, _, snap := newFixture(t,
		task("root", "", 10000, 0),
		task("a", "root", 10000, 1),
		task("b", "root", 20000, 2),
	)

	start := model.Date("2024-01-01")
	res, err := c.SetStart(context.Background(), snap, "root", &start, now)
	if err != nil {
		t.Fatalf("SetStart: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}

	a, _ := res.Snapshot.Get("a")
	b, _ := res.Snapshot.Get("b")
	root, _ := res.Snapshot.Get("root")

	if got := dateStr(a.Start); got != "2024-01-01" {
		t.Fatalf("a start = %s", got)
	}
	if got := dateStr(a.Due); got != "2024-01-02" {
		t.Fatalf("a due = %s", got)
	}
	if got := dateStr(b.Start); got != "2024-01-02" {
		t.Fatalf("b start = %s", got)
	}
	if got := dateStr(b.Due); got != "2024-01-04" {
		t.Fatalf("b due = %s", got)
	}
	if got := dateStr(root.Due); got != "2024-01-04" {
		t.Fatalf("root due = %s", got)
	}
	if root.DurationDays != 3 {
		t.Fatalf("root duration = %d, want 3", root.DurationDays)
	}
}

func TestSetStart_NilClearsSchedule(t *testing.T) {
	c, _, snap := newFixture(t,
		task("root", "", 10000, 0),
		task("a", "root", 10000, 1),
	)
	start := model.Date("2024-01-01")
	res, err := c.SetStart(context.Background(), snap, "root", &start, now)
	if err != nil {
		t.Fatalf("seed SetStart: %v", err)
	}

	res, err = c.SetStart(context.Background(), res.Snapshot, "root", nil, now)
	if err != nil {
		t.Fatalf("clear SetStart: %v", err)
	}
	for _, id := range []string{"root", "a"} {
		got, _ := res.Snapshot.Get(id)
		if got.Start != nil || got.Due != nil || got.OffsetDays != 0 {
			t.Fatalf("%s schedule not cleared: %+v", id, got)
		}
	}
}

func TestSetStart_InvalidDateDegrades(t *testing.T) {
	bad := task("root", "", 10000, 0)
	bad.Start = model.DatePtr("not-a-date")
	c, _, snap := newFixture(t, bad, task("a", "root", 10000, 1))

	start := model.Date("bogus")
	res, err := c.SetStart(context.Background(), snap, "root", &start, now)
	if err != nil {
		t.Fatalf("SetStart: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning for an unparseable start date")
	}
	// The child stays unscheduled instead of getting garbage dates.
	a, _ := res.Snapshot.Get("a")
	if a.Due != nil {
		t.Fatalf("child scheduled from a bad date: %+v", a)
	}
}

func dateStr(d *model.Date) string {
	if d == nil {
		return "<nil>"
	}
	return string(*d)
}
