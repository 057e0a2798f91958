package cli

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cadence-cli/internal/model"
)

func newDurationCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration <task-id> <days>",
		Short: "Set a leaf task's planned duration in days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			snap, err := loadSnapshot(cmd.Context(), st)
			if err != nil {
				return writeErr(cmd, err)
			}

			res, err := coordinator(app, st).SetDuration(cmd.Context(), snap, strings.TrimSpace(args[0]), days, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"days": days},
				"meta": map[string]any{
					"updated":  len(res.Changed),
					"warnings": warningStrings(res.Warnings),
				},
			})
		},
	}
	return cmd
}

func newStartCmd(app *App) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "start <task-id> [date]",
		Short: "Set a task's start date (YYYY-MM-DD) and reschedule its subtree",
		Args:  cobra.RangeArgs(1, 2),
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

			var start *model.Date
			if !clear {
				if len(args) < 2 {
					return writeErr(cmd, errors.New("start needs a date (YYYY-MM-DD) unless --clear is set"))
				}
				d := model.Date(strings.TrimSpace(args[1]))
				if _, err := d.Parse(); err != nil {
					return writeErr(cmd, err)
				}
				start = &d
			}

			res, err := coordinator(app, st).SetStart(cmd.Context(), snap, strings.TrimSpace(args[0]), start, time.Now().UTC())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"cleared": clear},
				"meta": map[string]any{
					"updated":  len(res.Changed),
					"warnings": warningStrings(res.Warnings),
				},
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the schedule of the subtree instead")
	return cmd
}
