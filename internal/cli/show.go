package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"cadence-cli/internal/schedule"
)

func newShowCmd(app *App) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its children and progress",
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
			t, ok := snap.Get(id)
			if !ok {
				return writeErr(cmd, errNotFound("task", id))
			}

			if render {
				// Human mode: markdown description straight to the terminal
				// instead of the JSON envelope.
				body := t.Description
				if body == "" {
					body = "_no description_"
				}
				md := fmt.Sprintf("# %s\n\n%s\n", t.Title, body)
				out, rerr := renderMarkdown(md)
				if rerr != nil {
					out = md
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			}

			done, total := schedule.CompletionRollup(snap, id)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"task":     t,
					"children": snap.Children(id),
					"duration": schedule.New(app.log).AggregateDuration(snap, id),
					"progress": map[string]int{"done": done, "total": total},
				},
			})
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "Render the description as markdown for terminals")
	return cmd
}

func renderMarkdown(md string) (string, error) {
	// Fixed style; auto-style can block on terminal background queries.
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
