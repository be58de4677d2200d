package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// projectsTable implements types.Table for projects.
type projectsTable struct {
	backend *Backend
}

var _ types.Table[*types.Project] = (*projectsTable)(nil)

const projectColumns = "project_id, name, description"

func scanProject(s scanner) (*types.Project, error) {
	p := &types.Project{}
	if err := s.Scan(&p.ID, &p.Name, &p.Description); err != nil {
		return nil, err
	}
	return p, nil
}

// Get retrieves a project by ID.
func (t *projectsTable) Get(ctx context.Context, id string) (*types.Project, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return getProject(ctx, b.db, id)
}

func getProject(ctx context.Context, q querier, id string) (*types.Project, error) {
	p, err := scanProject(q.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE project_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// Exists reports whether a project with the given ID is stored.
func (t *projectsTable) Exists(ctx context.Context, id string) (bool, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}
	return rowExists(ctx, b.db, types.ProjectsTable, "project_id", id)
}

// Set creates or replaces a project.
func (t *projectsTable) Set(ctx context.Context, id string, p *types.Project) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil project", types.ErrInvalidData)
	}

	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if id == "" {
		id = p.ID
	}
	if id == "" {
		id = generateUUID()
	}

	ts := now()
	_, err := b.db.ExecContext(ctx, `INSERT INTO projects (project_id, name, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(project_id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    updated_at = excluded.updated_at`,
		id, p.Name, p.Description, ts, ts)
	if err != nil {
		return "", fmt.Errorf("save project: %w", err)
	}
	p.ID = id

	if err := b.persistLocked(types.ProjectsTable); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a project. Tickets that referenced it keep existing with no
// project.
func (t *projectsTable) Delete(ctx context.Context, id string) error {
	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := deleteRow(ctx, tx, types.ProjectsTable, "project_id", id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tickets SET project_id = NULL, updated_at = ? WHERE project_id = ?", now(), id); err != nil {
		return fmt.Errorf("detach tickets from project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return b.persistLocked(types.ProjectsTable, types.TicketsTable)
}

// Fetch returns projects in creation order. Filter keys: name (exact match),
// limit, offset.
func (t *projectsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Project, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	w, err := projectWhere(filter)
	if err != nil {
		return nil, err
	}
	page, err := pageClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects"+w.String()+" ORDER BY created_at, project_id"+page,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetch projects: %w", err)
	}
	defer rows.Close()

	projects := []*types.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Count returns the number of projects matching the filter.
func (t *projectsTable) Count(ctx context.Context, filter types.Filter) (int, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	w, err := projectWhere(filter)
	if err != nil {
		return 0, err
	}
	n, err := countRows(ctx, b.db, "SELECT COUNT(*) FROM projects"+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

func projectWhere(filter types.Filter) (*where, error) {
	if err := checkFilterKeys(filter, "name"); err != nil {
		return nil, err
	}
	w := &where{}
	if name, ok, err := stringFilter(filter, "name"); err != nil {
		return nil, err
	} else if ok {
		w.add("name = ?", name)
	}
	return w, nil
}
