package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cadence-cli/internal/model"
	"cadence-cli/internal/mutate"
)

func newMoveCmd(app *App) *cobra.Command {
	var (
		parentID string
		toRoot   bool
		at       int
	)

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task to a new parent and/or position",
		Args:  cobra.ExactArgs(1),
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

			id := strings.TrimSpace(args[0])
			req := mutate.MoveRequest{TaskID: id, InsertAt: at}
			switch {
			case toRoot:
				req.NewParentID = nil
			case parentID != "":
				req.NewParentID = model.StringPtr(parentID)
			default:
				// Reorder within the current parent.
				t, ok := snap.Get(id)
				if !ok {
					return writeErr(cmd, errNotFound("task", id))
				}
				req.NewParentID = t.ParentID
			}

			res, err := coordinator(app, st).Move(cmd.Context(), snap, req, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"state":        string(res.State),
					"pos":          res.NewPos,
					"renormalized": res.Renormalized,
				},
				"meta": map[string]any{
					"updated":  len(res.Changed),
					"warnings": warningStrings(res.Warnings),
				},
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "New parent task id")
	cmd.Flags().BoolVar(&toRoot, "to-root", false, "Reparent to the partition root")
	cmd.Flags().IntVar(&at, "at", -1, "Insertion index among siblings (default: append)")
	return cmd
}
