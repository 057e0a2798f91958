package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"cadence-cli/internal/model"
	"cadence-cli/internal/order"
)

// Memory is a map-backed Persister for tests and ephemeral runs. It has
// no atomic clone path, so it also exercises the in-process cloner
// fallback.
type Memory struct {
	mu    sync.Mutex
	tasks map[string]model.Task
}

func NewMemory(seed ...model.Task) *Memory {
	m := &Memory{tasks: map[string]model.Task{}}
	for _, t := range seed {
		m.tasks[strings.TrimSpace(t.ID)] = t
	}
	return m
}

func (m *Memory) ListPartition(_ context.Context, p model.Partition) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.tasks {
		if t.Partition == p {
			out = append(out, t)
		}
	}
	order.SortSiblings(out)
	return out, nil
}

func (m *Memory) ListSiblings(_ context.Context, parentID *string, p model.Partition) ([]model.Task, error) {
	key := ""
	if parentID != nil {
		key = strings.TrimSpace(*parentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.tasks {
		if t.Partition == p && t.ParentKey() == key {
			out = append(out, t)
		}
	}
	order.SortSiblings(out)
	return out, nil
}

func (m *Memory) FetchChildren(_ context.Context, parentID string) ([]model.Task, error) {
	parentID = strings.TrimSpace(parentID)
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.tasks {
		if t.ParentKey() == parentID && parentID != "" {
			out = append(out, t)
		}
	}
	order.SortSiblings(out)
	return out, nil
}

func (m *Memory) GetTask(_ context.Context, id string) (model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[strings.TrimSpace(id)]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) CreateTask(_ context.Context, t model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[strings.TrimSpace(t.ID)] = t
	return nil
}

func (m *Memory) UpdatePosition(_ context.Context, id string, pos int64, parentID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[strings.TrimSpace(id)]
	if !ok {
		return ErrNotFound
	}
	t.Pos = pos
	t.ParentID = parentID
	m.tasks[t.ID] = t
	return nil
}

func (m *Memory) UpdateFields(_ context.Context, t model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[strings.TrimSpace(t.ID)]; !ok {
		return ErrNotFound
	}
	m.tasks[strings.TrimSpace(t.ID)] = t
	return nil
}

func (m *Memory) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, strings.TrimSpace(id))
	return nil
}

func (m *Memory) CloneSubtree(context.Context, string, CloneSpec) (string, int, error) {
	return "", 0, ErrCloneUnsupported
}

func (m *Memory) NextID() string {
	return "task-" + uuid.NewString()
}

var _ Persister = (*Memory)(nil)
