package tui

import (
	"cadence-cli/internal/model"
	"cadence-cli/internal/tree"
)

// row is one visible outline line.
type row struct {
	id    string
	depth int
}

// flatten walks the partition's forest in outline order, skipping the
// descendants of collapsed nodes.
func flatten(snap tree.Snapshot, p model.Partition, collapsed map[string]bool) []row {
	var rows []row
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		rows = append(rows, row{id: id, depth: depth})
		if collapsed[id] {
			return
		}
		for _, k := range snap.Children(id) {
			walk(k.ID, depth+1)
		}
	}
	for _, r := range snap.Roots(p) {
		walk(r.ID, 0)
	}
	return rows
}

// indexOf returns the position of id in rows, or -1.
func indexOf(rows []row, id string) int {
	for i, r := range rows {
		if r.id == id {
			return i
		}
	}
	return -1
}

// siblingIndex returns id's position within its sibling set.
func siblingIndex(sibs []model.Task, id string) int {
	for i, s := range sibs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
