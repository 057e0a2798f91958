package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the workspace store",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        app.Dir,
					"sqlitePath": filepath.Join(app.Dir, "index.sqlite"),
				},
			})
		},
	}
	return cmd
}
