package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cadence-cli/internal/clone"
	"cadence-cli/internal/model"
	"cadence-cli/internal/mutate"
)

func newCloneCmd(app *App) *cobra.Command {
	var (
		parentID    string
		title       string
		description string
		start       string
	)

	cmd := &cobra.Command{
		Use:   "clone <source-task-id>",
		Short: "Clone a subtree, typically stamping a template into a plan",
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

			ov := clone.Overrides{Title: title, Description: description}
			if start != "" {
				d := model.Date(start)
				if _, err := d.Parse(); err != nil {
					return writeErr(cmd, err)
				}
				ov.Start = &d
			}

			var parent *string
			if parentID != "" {
				parent = model.StringPtr(parentID)
			}
			res, err := coordinator(app, st).Paste(cmd.Context(), snap, mutate.PasteRequest{
				SourceID:    strings.TrimSpace(args[0]),
				NewParentID: parent,
				Partition:   p,
				ActorID:     app.ActorID,
				Overrides:   ov,
			}, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"newRootId": res.NewRootID,
					"count":     res.Count,
					"atomic":    res.Atomic,
				},
				"meta": map[string]any{
					"updated":  len(res.Changed),
					"warnings": warningStrings(res.Warnings),
				},
			})
		},
	}

	cmd.Flags().StringVar(&parentID, "parent", "", "Target parent task id (default: partition root)")
	cmd.Flags().StringVar(&title, "title", "", "Override the cloned root's title")
	cmd.Flags().StringVar(&description, "description", "", "Override the cloned root's description")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD) for the cloned root")
	return cmd
}
