package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cadence-cli/internal/schedule"
)

func newRemoveCmd(app *App) *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "remove <task-id>",
		Short: "Remove a task (with --cascade, its whole subtree)",
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

			plan, err := coordinator(app, st).Remove(cmd.Context(), snap, strings.TrimSpace(args[0]), cascade, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"removed": plan.RemovedIDs},
				"meta": map[string]any{
					"updated":  len(plan.Changed),
					"warnings": warningStrings(plan.Warnings),
				},
			})
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also remove all descendants")
	return cmd
}

func warningStrings(ws []schedule.Warning) []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.String())
	}
	return out
}
