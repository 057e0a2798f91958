package cli

import (
	"github.com/spf13/cobra"

	"cadence-cli/internal/model"
	"cadence-cli/internal/tree"
)

// outlineRow is one task flattened into outline order.
type outlineRow struct {
	Depth int        `json:"depth"`
	Task  model.Task `json:"task"`
}

func newListCmd(app *App) *cobra.Command {
	var rootID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a partition in outline order",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			snap, err := loadSnapshot(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := partitionOf(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var rows []outlineRow
			if rootID != "" {
				if _, ok := snap.Get(rootID); !ok {
					return writeErr(cmd, errNotFound("task", rootID))
				}
				rows = flattenOutline(snap, []string{rootID}, 0)
			} else {
				rootIDs := make([]string, 0)
				for _, r := range snap.Roots(p) {
					rootIDs = append(rootIDs, r.ID)
				}
				rows = flattenOutline(snap, rootIDs, 0)
			}

			return writeOut(cmd, app, map[string]any{
				"data": rows,
				"meta": map[string]any{
					"partition": string(p),
					"count":     len(rows),
				},
			})
		},
	}

	cmd.Flags().StringVar(&rootID, "root", "", "Limit the listing to one subtree")
	return cmd
}

func flattenOutline(snap tree.Snapshot, ids []string, depth int) []outlineRow {
	rows := []outlineRow{}
	for _, id := range ids {
		t, ok := snap.Get(id)
		if !ok {
			continue
		}
		rows = append(rows, outlineRow{Depth: depth, Task: t})
		kidIDs := make([]string, 0)
		for _, k := range snap.Children(id) {
			kidIDs = append(kidIDs, k.ID)
		}
		rows = append(rows, flattenOutline(snap, kidIDs, depth+1)...)
	}
	return rows
}
