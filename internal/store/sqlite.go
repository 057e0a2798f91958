package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cadence-cli/internal/clone"
	"cadence-cli/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "index.sqlite"

// SQLite is the default Persister, backed by a single workspace file.
type SQLite struct {
	db  *sql.DB
	log *zap.Logger
}

// Open opens (creating if needed) the workspace database under dir.
func Open(ctx context.Context, dir string, log *zap.Logger) (*SQLite, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFileName))
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids
	// "database is locked" flakiness with concurrent local processes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &SQLite{db: db, log: log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			parent_id TEXT,
			part TEXT NOT NULL,
			pos INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			default_duration INTEGER NOT NULL,
			duration_days INTEGER NOT NULL,
			start_date TEXT,
			due_date TEXT,
			offset_days INTEGER NOT NULL,
			done INTEGER NOT NULL,
			owner_actor_id TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_siblings ON tasks(part, parent_id, pos);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

const taskColumns = `id, parent_id, part, pos, title, description,
	default_duration, duration_days, start_date, due_date, offset_days,
	done, owner_actor_id, created_by, created_at_unixms, updated_at_unixms`

type rowScanner interface{ Scan(dest ...any) error }

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var parent, start, due sql.NullString
	var part string
	var done int
	var createdMs, updatedMs int64
	err := r.Scan(&t.ID, &parent, &part, &t.Pos, &t.Title, &t.Description,
		&t.DefaultDuration, &t.DurationDays, &start, &due, &t.OffsetDays,
		&done, &t.OwnerActorID, &t.CreatedBy, &createdMs, &updatedMs)
	if err != nil {
		return model.Task{}, err
	}
	if parent.Valid && strings.TrimSpace(parent.String) != "" {
		t.ParentID = model.StringPtr(strings.TrimSpace(parent.String))
	}
	t.Partition = model.Partition(part)
	if start.Valid && strings.TrimSpace(start.String) != "" {
		t.Start = model.DatePtr(model.Date(start.String))
	}
	if due.Valid && strings.TrimSpace(due.String) != "" {
		t.Due = model.DatePtr(model.Date(due.String))
	}
	t.Done = done != 0
	t.CreatedAt = time.UnixMilli(createdMs).UTC()
	t.UpdatedAt = time.UnixMilli(updatedMs).UTC()
	return t, nil
}

func taskArgs(t model.Task) []any {
	var parent, start, due any
	if t.ParentID != nil {
		parent = strings.TrimSpace(*t.ParentID)
	}
	if t.Start != nil {
		start = string(*t.Start)
	}
	if t.Due != nil {
		due = string(*t.Due)
	}
	done := 0
	if t.Done {
		done = 1
	}
	return []any{
		t.ID, parent, string(t.Partition), t.Pos, t.Title, t.Description,
		t.DefaultDuration, t.DurationDays, start, due, t.OffsetDays,
		done, t.OwnerActorID, t.CreatedBy,
		t.CreatedAt.UTC().UnixMilli(), t.UpdatedAt.UTC().UnixMilli(),
	}
}

func (s *SQLite) queryTasks(ctx context.Context, q string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLite) ListPartition(ctx context.Context, p model.Partition) ([]model.Task, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE part = ? ORDER BY pos ASC, created_at_unixms ASC, id ASC`,
		string(p))
}

func (s *SQLite) ListSiblings(ctx context.Context, parentID *string, p model.Partition) ([]model.Task, error) {
	if parentID == nil {
		return s.queryTasks(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE part = ? AND parent_id IS NULL ORDER BY pos ASC, created_at_unixms ASC, id ASC`,
			string(p))
	}
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE part = ? AND parent_id = ? ORDER BY pos ASC, created_at_unixms ASC, id ASC`,
		string(p), strings.TrimSpace(*parentID))
}

func (s *SQLite) FetchChildren(ctx context.Context, parentID string) ([]model.Task, error) {
	return s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY pos ASC, created_at_unixms ASC, id ASC`,
		strings.TrimSpace(parentID))
}

func (s *SQLite) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, strings.TrimSpace(id))
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	return t, err
}

func (s *SQLite) CreateTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks(`+taskColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		taskArgs(t)...)
	if err != nil {
		s.log.Warn("create task failed", zap.String("task", t.ID), zap.Error(err))
	}
	return err
}

func (s *SQLite) UpdatePosition(ctx context.Context, id string, pos int64, parentID *string) error {
	var parent any
	if parentID != nil {
		parent = strings.TrimSpace(*parentID)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET pos = ?, parent_id = ?, updated_at_unixms = ? WHERE id = ?`,
		pos, parent, time.Now().UTC().UnixMilli(), strings.TrimSpace(id))
	if err != nil {
		s.log.Warn("update position failed", zap.String("task", id), zap.Error(err))
		return err
	}
	return errIfNoRows(res)
}

func (s *SQLite) UpdateFields(ctx context.Context, t model.Task) error {
	var parent, start, due any
	if t.ParentID != nil {
		parent = strings.TrimSpace(*t.ParentID)
	}
	if t.Start != nil {
		start = string(*t.Start)
	}
	if t.Due != nil {
		due = string(*t.Due)
	}
	done := 0
	if t.Done {
		done = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET
			parent_id = ?, pos = ?, title = ?, description = ?,
			default_duration = ?, duration_days = ?,
			start_date = ?, due_date = ?, offset_days = ?,
			done = ?, updated_at_unixms = ?
		WHERE id = ?`,
		parent, t.Pos, t.Title, t.Description,
		t.DefaultDuration, t.DurationDays,
		start, due, t.OffsetDays,
		done, time.Now().UTC().UnixMilli(), strings.TrimSpace(t.ID))
	if err != nil {
		s.log.Warn("update fields failed", zap.String("task", t.ID), zap.Error(err))
		return err
	}
	return errIfNoRows(res)
}

func (s *SQLite) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		s.log.Warn("delete task failed", zap.String("task", id), zap.Error(err))
	}
	return err
}

// CloneSubtree clones rootID and all descendants inside one
// transaction. The traversal and field-reset semantics are shared with
// the in-process cloner; the transaction makes them atomic.
func (s *SQLite) CloneSubtree(ctx context.Context, rootID string, spec CloneSpec) (string, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, strings.TrimSpace(rootID))
	root, err := scanTask(row)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	}
	if err != nil {
		return "", 0, err
	}

	fetch := func(ctx context.Context, parentID string) ([]model.Task, error) {
		rows, err := tx.QueryContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE parent_id = ? ORDER BY pos ASC, created_at_unixms ASC, id ASC`,
			strings.TrimSpace(parentID))
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []model.Task{}
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, rows.Err()
	}

	res, err := clone.Subtree(ctx, root, spec.NewParentID, spec.Partition, spec.ActorID,
		clone.Overrides{Title: spec.Title, Description: spec.Description, Start: spec.Start, Due: spec.Due},
		fetch, s.NextID, time.Now().UTC())
	if err != nil {
		return "", 0, err
	}

	for _, c := range res.Cloned {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks(`+taskColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			taskArgs(c)...); err != nil {
			return "", 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", 0, err
	}
	s.log.Debug("cloned subtree",
		zap.String("source", rootID),
		zap.String("newRoot", res.NewRootID),
		zap.Int("count", res.Count()),
	)
	return res.NewRootID, res.Count(), nil
}

func (s *SQLite) NextID() string {
	return "task-" + uuid.NewString()
}

func errIfNoRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Persister = (*SQLite)(nil)
