package schedule

import "cadence-cli/internal/tree"

// CompletionRollup counts completed and total leaves under a node, the
// node itself included when it is a leaf. Internal nodes carry no
// completion of their own; their progress is their leaves'.
func CompletionRollup(s tree.Snapshot, id string) (done, total int) {
	t, ok := s.Get(id)
	if !ok {
		return 0, 0
	}
	kids := s.Children(id)
	if len(kids) == 0 {
		if t.Done {
			return 1, 1
		}
		return 0, 1
	}
	for _, k := range kids {
		d, n := CompletionRollup(s, k.ID)
		done += d
		total += n
	}
	return done, total
}
