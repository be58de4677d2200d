package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// labelsTable implements types.Table for labels. Saving a label replaces its
// rows in ticket_labels, the same rows a ticket save writes from the other
// side.
type labelsTable struct {
	backend *Backend
}

var _ types.Table[*types.Label] = (*labelsTable)(nil)

const labelColumns = "label_id, value"

func scanLabel(s scanner) (*types.Label, error) {
	l := &types.Label{}
	if err := s.Scan(&l.ID, &l.Value); err != nil {
		return nil, err
	}
	return l, nil
}

// Get retrieves a label with its tickets.
func (t *labelsTable) Get(ctx context.Context, id string) (*types.Label, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	l, err := scanLabel(b.db.QueryRowContext(ctx,
		"SELECT "+labelColumns+" FROM labels WHERE label_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get label %s: %w", id, err)
	}
	return newGraph(b.db).label(ctx, l)
}

// Exists reports whether a label with the given ID is stored.
func (t *labelsTable) Exists(ctx context.Context, id string) (bool, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}
	return rowExists(ctx, b.db, types.LabelsTable, "label_id", id)
}

// Set creates or replaces a label and its ticket associations. Every
// associated ticket must already be saved.
func (t *labelsTable) Set(ctx context.Context, id string, l *types.Label) (string, error) {
	if l == nil {
		return "", fmt.Errorf("%w: nil label", types.ErrInvalidData)
	}
	tickets := l.Tickets()
	for _, tk := range tickets {
		if tk.ID == "" {
			return "", fmt.Errorf("%w: label ticket %q", types.ErrUnsavedReference, tk.Title)
		}
	}

	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if id == "" {
		id = l.ID
	}
	if id == "" {
		id = generateUUID()
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tk := range tickets {
		if err := mustExist(ctx, tx, types.TicketsTable, "ticket_id", tk.ID); err != nil {
			return "", err
		}
	}

	ts := now()
	_, err = tx.ExecContext(ctx, `INSERT INTO labels (label_id, value, created_at, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(label_id) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at`,
		id, l.Value, ts, ts)
	if err != nil {
		return "", fmt.Errorf("save label: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_labels WHERE label_id = ?", id); err != nil {
		return "", fmt.Errorf("clear label tickets: %w", err)
	}
	for _, tk := range tickets {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO ticket_labels (ticket_id, label_id) VALUES (?, ?)", tk.ID, id); err != nil {
			return "", fmt.Errorf("save label ticket: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	l.ID = id

	if err := b.persistLocked(types.LabelsTable, types.TicketLabelsTable); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a label and detaches it from every ticket.
func (t *labelsTable) Delete(ctx context.Context, id string) error {
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

	found, err := deleteRow(ctx, tx, types.LabelsTable, "label_id", id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_labels WHERE label_id = ?", id); err != nil {
		return fmt.Errorf("delete label tickets: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return b.persistLocked(types.LabelsTable, types.TicketLabelsTable)
}

// Fetch returns labels in creation order with their tickets. Filter keys:
// value (exact match), ticket_id, limit, offset.
func (t *labelsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Label, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	w, err := labelWhere(filter)
	if err != nil {
		return nil, err
	}
	page, err := pageClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+labelColumns+" FROM labels"+w.String()+" ORDER BY created_at, label_id"+page,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetch labels: %w", err)
	}
	var labels []*types.Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g := newGraph(b.db)
	out := make([]*types.Label, 0, len(labels))
	for _, l := range labels {
		hydrated, err := g.label(ctx, l)
		if err != nil {
			return nil, err
		}
		out = append(out, hydrated)
	}
	return out, nil
}

// Count returns the number of labels matching the filter.
func (t *labelsTable) Count(ctx context.Context, filter types.Filter) (int, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	w, err := labelWhere(filter)
	if err != nil {
		return 0, err
	}
	n, err := countRows(ctx, b.db, "SELECT COUNT(*) FROM labels"+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return n, nil
}

func labelWhere(filter types.Filter) (*where, error) {
	if err := checkFilterKeys(filter, "value", "ticket_id"); err != nil {
		return nil, err
	}
	w := &where{}
	if value, ok, err := stringFilter(filter, "value"); err != nil {
		return nil, err
	} else if ok {
		w.add("value = ?", value)
	}
	if ticketID, ok, err := stringFilter(filter, "ticket_id"); err != nil {
		return nil, err
	} else if ok {
		w.add("label_id IN (SELECT label_id FROM ticket_labels WHERE ticket_id = ?)", ticketID)
	}
	return w, nil
}
