package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"cadence-cli/internal/model"
	"cadence-cli/internal/mutate"
	"cadence-cli/internal/store"
	"cadence-cli/internal/tree"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Indent   key.Binding
	Outdent  key.Binding
	Collapse key.Binding
	Done     key.Binding
	Delete   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		MoveUp:   key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown: key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		Indent:   key.NewBinding(key.WithKeys("L", "tab"), key.WithHelp("L", "indent")),
		Outdent:  key.NewBinding(key.WithKeys("H", "shift+tab"), key.WithHelp("H", "outdent")),
		Collapse: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "fold")),
		Done:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete subtree")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.MoveUp, k.MoveDown, k.Indent, k.Outdent, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Collapse, k.Done},
		{k.MoveUp, k.MoveDown, k.Indent, k.Outdent},
		{k.Delete, k.Help, k.Quit},
	}
}

type Model struct {
	snap      tree.Snapshot
	store     store.Persister
	coord     *mutate.Coordinator
	partition model.Partition
	actorID   string
	log       *zap.Logger

	rows      []row
	cursor    int
	collapsed map[string]bool

	keys   keyMap
	help   help.Model
	status string
	width  int
	height int
}

func newModel(opts Options) *Model {
	m := &Model{
		snap:      opts.Snapshot,
		store:     opts.Store,
		coord:     mutate.New(opts.Store, nil, opts.Log),
		partition: opts.Partition,
		actorID:   opts.ActorID,
		log:       opts.Log,
		collapsed: map[string]bool{},
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
	m.rows = flatten(m.snap, m.partition, m.collapsed)
	return m
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Collapse):
		if t, ok := m.current(); ok && m.snap.HasChildren(t.ID) {
			m.collapsed[t.ID] = !m.collapsed[t.ID]
			m.refresh(t.ID)
		}
	case key.Matches(msg, m.keys.Done):
		m.toggleDone()
	case key.Matches(msg, m.keys.MoveUp):
		m.moveWithinSiblings(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveWithinSiblings(+1)
	case key.Matches(msg, m.keys.Indent):
		m.indent()
	case key.Matches(msg, m.keys.Outdent):
		m.outdent()
	case key.Matches(msg, m.keys.Delete):
		m.deleteSubtree()
	}
	return m, nil
}

func (m *Model) current() (model.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Task{}, false
	}
	return m.snap.Get(m.rows[m.cursor].id)
}

// refresh reflattens after a structural change and keeps the cursor on
// the same task when it still exists.
func (m *Model) refresh(focusID string) {
	m.rows = flatten(m.snap, m.partition, m.collapsed)
	if i := indexOf(m.rows, focusID); i >= 0 {
		m.cursor = i
	} else if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) siblingsOf(t model.Task) []model.Task {
	if pk := t.ParentKey(); pk != "" {
		return m.snap.Children(pk)
	}
	return m.snap.Roots(t.Partition)
}

func (m *Model) applyMove(t model.Task, newParentID *string, insertAt int) {
	res, err := m.coord.Move(context.Background(), m.snap, mutate.MoveRequest{
		TaskID:      t.ID,
		NewParentID: newParentID,
		InsertAt:    insertAt,
	}, time.Now().UTC())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.snap = res.Snapshot
	m.status = ""
	if len(res.Warnings) > 0 {
		m.status = res.Warnings[0].String()
	}
	m.refresh(t.ID)
}

func (m *Model) moveWithinSiblings(delta int) {
	t, ok := m.current()
	if !ok {
		return
	}
	sibs := m.siblingsOf(t)
	idx := siblingIndex(sibs, t.ID)
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(sibs) {
		return
	}
	m.applyMove(t, t.ParentID, target)
}

// indent makes the task the last child of its previous sibling.
func (m *Model) indent() {
	t, ok := m.current()
	if !ok {
		return
	}
	sibs := m.siblingsOf(t)
	idx := siblingIndex(sibs, t.ID)
	if idx <= 0 {
		return
	}
	newParent := sibs[idx-1].ID
	delete(m.collapsed, newParent)
	m.applyMove(t, model.StringPtr(newParent), -1)
}

// outdent lifts the task next to its parent.
func (m *Model) outdent() {
	t, ok := m.current()
	if !ok || t.ParentID == nil {
		return
	}
	parent, ok := m.snap.Get(*t.ParentID)
	if !ok {
		return
	}
	idx := siblingIndex(m.siblingsOf(parent), parent.ID)
	m.applyMove(t, parent.ParentID, idx+1)
}

func (m *Model) toggleDone() {
	t, ok := m.current()
	if !ok || m.snap.HasChildren(t.ID) {
		return
	}
	t.Done = !t.Done
	t.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateFields(context.Background(), t); err != nil {
		m.status = err.Error()
		return
	}
	m.snap = m.snap.With(t)
	m.status = ""
	m.refresh(t.ID)
}

func (m *Model) deleteSubtree() {
	t, ok := m.current()
	if !ok {
		return
	}
	plan, err := m.coord.Remove(context.Background(), m.snap, t.ID, true, time.Now().UTC())
	if err != nil {
		m.status = err.Error()
		return
	}
	m.snap = plan.Snapshot
	m.status = ""
	m.refresh("")
}
