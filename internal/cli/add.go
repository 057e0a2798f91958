package cli

import (
	"time"

	"github.com/spf13/cobra"

	"cadence-cli/internal/model"
	"cadence-cli/internal/mutate"
)

func newAddCmd(app *App) *cobra.Command {
	var (
		parentID    string
		description string
		days        int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task at the end of a sibling set",
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
			p, err := partitionOf(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var parent *string
			if parentID != "" {
				parent = model.StringPtr(parentID)
			}
			res, err := coordinator(app, st).Add(cmd.Context(), snap, mutate.AddRequest{
				ParentID:    parent,
				Partition:   p,
				Title:       args[0],
				Description: description,
				Duration:    days,
				ActorID:     app.ActorID,
			}, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": res.Task,
				"meta": map[string]any{"updated": len(res.Changed)},
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Parent task id (default: partition root)")
	cmd.Flags().StringVar(&description, "description", "", "Markdown description")
	cmd.Flags().IntVar(&days, "days", 1, "Planned duration in days")
	return cmd
}
