package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"cadence-cli/internal/tree"
)

var errDoctorIssuesFound = errors.New("doctor found errors")

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate workspace tree invariants",
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

			report := tree.Audit(snap)
			if err := writeOut(cmd, app, map[string]any{
				"data": report,
				"meta": map[string]any{
					"issues":    len(report.Issues),
					"hasErrors": report.HasErrors(),
				},
				"_hints": []string{"cadence list"},
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
