// Package tui is the interactive outline editor. It drives the same
// mutation coordinators as the scriptable commands; the screen is a
// view over one immutable snapshot that is swapped wholesale after each
// mutation.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/store"
	"cadence-cli/internal/tree"
)

type Options struct {
	Store     store.Persister
	Snapshot  tree.Snapshot
	Partition model.Partition
	ActorID   string
	Log       *zap.Logger
}

func Run(opts Options) error {
	if opts.Store == nil {
		return errors.New("tui: nil store")
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	m := newModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
