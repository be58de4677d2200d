package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// ticketsTable implements types.Table for tickets. A ticket row owns its
// rows in ticket_labels; saving a ticket replaces them.
type ticketsTable struct {
	backend *Backend
}

var _ types.Table[*types.Ticket] = (*ticketsTable)(nil)

// Get retrieves a ticket with its project, assignee and labels.
func (t *ticketsTable) Get(ctx context.Context, id string) (*types.Ticket, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	r, err := scanTicket(b.db.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE ticket_id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return newGraph(b.db).ticket(ctx, r)
}

// Exists reports whether a ticket with the given ID is stored.
func (t *ticketsTable) Exists(ctx context.Context, id string) (bool, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}
	return rowExists(ctx, b.db, types.TicketsTable, "ticket_id", id)
}

// Set creates or replaces a ticket and its label associations. Every
// referenced project, user and label must already be saved.
func (t *ticketsTable) Set(ctx context.Context, id string, tk *types.Ticket) (string, error) {
	if tk == nil {
		return "", fmt.Errorf("%w: nil ticket", types.ErrInvalidData)
	}
	labels := tk.Labels()
	if err := checkTicketRefsSaved(tk, labels); err != nil {
		return "", err
	}

	b := t.backend
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if id == "" {
		id = tk.ID
	}
	if id == "" {
		id = generateUUID()
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var projectID, assignedTo string
	if tk.Project != nil {
		projectID = tk.Project.ID
		if err := mustExist(ctx, tx, types.ProjectsTable, "project_id", projectID); err != nil {
			return "", err
		}
	}
	if tk.AssignedTo != nil {
		assignedTo = tk.AssignedTo.ID
		if err := mustExist(ctx, tx, types.UsersTable, "user_id", assignedTo); err != nil {
			return "", err
		}
	}
	for _, l := range labels {
		if err := mustExist(ctx, tx, types.LabelsTable, "label_id", l.ID); err != nil {
			return "", err
		}
	}

	var due any
	if tk.DueDate != nil {
		due = tk.DueDate.String()
	}
	ts := now()
	_, err = tx.ExecContext(ctx, `INSERT INTO tickets (ticket_id, title, description, due_date, done, project_id, assigned_to, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(ticket_id) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    due_date = excluded.due_date,
    done = excluded.done,
    project_id = excluded.project_id,
    assigned_to = excluded.assigned_to,
    updated_at = excluded.updated_at`,
		id, tk.Title, tk.Description, due, tk.Done, nullable(projectID), nullable(assignedTo), ts, ts)
	if err != nil {
		return "", fmt.Errorf("save ticket: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_labels WHERE ticket_id = ?", id); err != nil {
		return "", fmt.Errorf("clear ticket labels: %w", err)
	}
	for _, l := range labels {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO ticket_labels (ticket_id, label_id) VALUES (?, ?)", id, l.ID); err != nil {
			return "", fmt.Errorf("save ticket label: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}
	tk.ID = id

	if err := b.persistLocked(types.TicketsTable, types.TicketLabelsTable); err != nil {
		return "", err
	}
	return id, nil
}

func checkTicketRefsSaved(tk *types.Ticket, labels []*types.Label) error {
	if tk.Project != nil && tk.Project.ID == "" {
		return fmt.Errorf("%w: ticket project", types.ErrUnsavedReference)
	}
	if tk.AssignedTo != nil && tk.AssignedTo.ID == "" {
		return fmt.Errorf("%w: ticket assignee", types.ErrUnsavedReference)
	}
	for _, l := range labels {
		if l.ID == "" {
			return fmt.Errorf("%w: ticket label %q", types.ErrUnsavedReference, l.Value)
		}
	}
	return nil
}

// mustExist returns ErrDanglingReference if the referenced row is missing.
func mustExist(ctx context.Context, q querier, table, idColumn, id string) error {
	ok, err := rowExists(ctx, q, table, idColumn, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", types.ErrDanglingReference, table, id)
	}
	return nil
}

// Delete removes a ticket and its label associations.
func (t *ticketsTable) Delete(ctx context.Context, id string) error {
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

	found, err := deleteRow(ctx, tx, types.TicketsTable, "ticket_id", id)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ticket_labels WHERE ticket_id = ?", id); err != nil {
		return fmt.Errorf("delete ticket labels: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return b.persistLocked(types.TicketsTable, types.TicketLabelsTable)
}

// Fetch returns hydrated tickets. Filter keys:
//
//	assigned_to  user ID
//	project_id   project ID
//	label_id     tickets carrying the label
//	done         bool
//	order_by     "created" (default) or "due_date"; tickets without a due
//	             date sort last
//	limit, offset
func (t *ticketsTable) Fetch(ctx context.Context, filter types.Filter) ([]*types.Ticket, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	w, err := ticketWhere(filter)
	if err != nil {
		return nil, err
	}
	order, err := ticketOrder(filter)
	if err != nil {
		return nil, err
	}
	page, err := pageClause(filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets"+w.String()+" ORDER BY "+order+page, w.args...)
	if err != nil {
		return nil, fmt.Errorf("fetch tickets: %w", err)
	}
	scanned, err := scanTicketRows(rows)
	if err != nil {
		return nil, err
	}

	g := newGraph(b.db)
	tickets := make([]*types.Ticket, 0, len(scanned))
	for _, r := range scanned {
		tk, err := g.ticket(ctx, r)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, tk)
	}
	return tickets, nil
}

// Count returns the number of tickets matching the filter.
func (t *ticketsTable) Count(ctx context.Context, filter types.Filter) (int, error) {
	b := t.backend
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	w, err := ticketWhere(filter)
	if err != nil {
		return 0, err
	}
	if _, err := ticketOrder(filter); err != nil {
		return 0, err
	}
	n, err := countRows(ctx, b.db, "SELECT COUNT(*) FROM tickets"+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("count tickets: %w", err)
	}
	return n, nil
}

func ticketWhere(filter types.Filter) (*where, error) {
	if err := checkFilterKeys(filter, "assigned_to", "project_id", "label_id", "done", "order_by"); err != nil {
		return nil, err
	}
	w := &where{}
	for _, col := range []string{"assigned_to", "project_id"} {
		v, ok, err := stringFilter(filter, col)
		if err != nil {
			return nil, err
		}
		if ok {
			w.add(col+" = ?", v)
		}
	}
	if labelID, ok, err := stringFilter(filter, "label_id"); err != nil {
		return nil, err
	} else if ok {
		w.add("ticket_id IN (SELECT ticket_id FROM ticket_labels WHERE label_id = ?)", labelID)
	}
	if done, ok, err := boolFilter(filter, "done"); err != nil {
		return nil, err
	} else if ok {
		w.add("done = ?", done)
	}
	return w, nil
}

func ticketOrder(filter types.Filter) (string, error) {
	order, _, err := stringFilter(filter, "order_by")
	if err != nil {
		return "", err
	}
	switch order {
	case "", types.OrderCreated:
		return "created_at, ticket_id", nil
	case types.OrderDueDate:
		return "due_date IS NULL, due_date, created_at, ticket_id", nil
	default:
		return "", fmt.Errorf("%w: order_by %q", types.ErrInvalidFilter, order)
	}
}
