package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cadence-cli/internal/config"
	"cadence-cli/internal/format"
	"cadence-cli/internal/model"
	"cadence-cli/internal/mutate"
	"cadence-cli/internal/store"
	"cadence-cli/internal/tree"
	"cadence-cli/internal/tui"
)

type App struct {
	Dir        string
	ActorID    string
	Partition  string
	PrettyJSON bool
	Format     string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "cadence",
		Short:        "Cadence plan outline CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive outline
  cadence

  # Scriptable commands
  cadence list
  cadence add "Draft report" --parent task-abc --days 3

  # Stamp a template into a running plan
  cadence clone task-tpl --parent task-plan --title "Sprint 12"

  # Direct task lookup (shortcut for: cadence show <task-id>)
  cadence task-vth
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		app.cfg = cfg
		if app.Dir == "" {
			app.Dir = cfg.Workspace.Dir
		}
		if app.ActorID == "" {
			app.ActorID = cfg.Workspace.ActorID
		}
		log, err := config.NewLogger(cfg.Log)
		if err != nil {
			return err
		}
		app.log = log
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("CADENCE_DIR", ""), "Path to workspace dir (overrides discovery)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("CADENCE_ACTOR", ""), "Actor id recorded on writes")
	cmd.PersistentFlags().StringVar(&app.Partition, "partition", "instance", "Partition to operate on (template|instance)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("CADENCE_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newDurationCmd(app))
	cmd.AddCommand(newStartCmd(app))
	cmd.AddCommand(newCloneCmd(app))
	cmd.AddCommand(newDoctorCmd(app))

	return cmd
}

func runTUI(ctx context.Context, app *App) error {
	st, err := openStore(ctx, app)
	if err != nil {
		return err
	}
	defer st.Close()
	snap, err := loadSnapshot(ctx, st)
	if err != nil {
		return err
	}
	p, err := partitionOf(app)
	if err != nil {
		return err
	}
	return tui.Run(tui.Options{
		Store:     st,
		Snapshot:  snap,
		Partition: p,
		ActorID:   app.ActorID,
		Log:       app.log,
	})
}

// resolveDir picks the workspace directory: --dir / config first, then
// upward discovery, then a fresh .cadence next to the caller.
func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func openStore(ctx context.Context, app *App) (*store.SQLite, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, dir, app.log)
}

// loadSnapshot reads both partitions into one immutable snapshot.
// Cross-partition operations (clone) need to see template and instance
// rows side by side.
func loadSnapshot(ctx context.Context, p store.Persister) (tree.Snapshot, error) {
	templates, err := p.ListPartition(ctx, model.PartitionTemplate)
	if err != nil {
		return tree.Snapshot{}, err
	}
	instances, err := p.ListPartition(ctx, model.PartitionInstance)
	if err != nil {
		return tree.Snapshot{}, err
	}
	return tree.Build(append(templates, instances...)), nil
}

func partitionOf(app *App) (model.Partition, error) {
	return model.ParsePartition(app.Partition)
}

func coordinator(app *App, st store.Persister) *mutate.Coordinator {
	return mutate.New(st, nil, app.log)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
