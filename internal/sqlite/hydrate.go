package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

const ticketColumns = "ticket_id, title, description, due_date, done, project_id, assigned_to"

// ticketRow is a scanned ticket plus the foreign keys it still needs
// resolved.
type ticketRow struct {
	ticket     *types.Ticket
	projectID  sql.NullString
	assignedTo sql.NullString
}

func scanTicket(s scanner) (ticketRow, error) {
	var (
		r    ticketRow
		due  sql.NullString
		done int64
	)
	t := &types.Ticket{}
	if err := s.Scan(&t.ID, &t.Title, &t.Description, &due, &done, &r.projectID, &r.assignedTo); err != nil {
		return r, err
	}
	if due.Valid && due.String != "" {
		d, err := civil.ParseDate(due.String)
		if err != nil {
			return r, fmt.Errorf("ticket %s: parse due date %q: %w", t.ID, due.String, err)
		}
		t.DueDate = &d
	}
	t.Done = done != 0
	r.ticket = t
	return r, nil
}

// scanTicketRows drains rows so that hydration can issue its own queries.
func scanTicketRows(rows *sql.Rows) ([]ticketRow, error) {
	defer rows.Close()
	var out []ticketRow
	for rows.Next() {
		r, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// graph resolves references one level deep. It is an identity map for a
// single read: every stored entity it hands out is a single instance, so a
// label shared by two fetched tickets is the same *Label on both.
type graph struct {
	q        querier
	projects map[string]*types.Project
	users    map[string]*types.User
	labels   map[string]*types.Label
	tickets  map[string]*types.Ticket
}

func newGraph(q querier) *graph {
	return &graph{
		q:        q,
		projects: make(map[string]*types.Project),
		users:    make(map[string]*types.User),
		labels:   make(map[string]*types.Label),
		tickets:  make(map[string]*types.Ticket),
	}
}

// project returns the project with the given ID, or nil if it is gone.
func (g *graph) project(ctx context.Context, id string) (*types.Project, error) {
	if p, ok := g.projects[id]; ok {
		return p, nil
	}
	p, err := getProject(ctx, g.q, id)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	g.projects[id] = p
	return p, nil
}

// user returns the user with the given ID, or nil if it is gone.
func (g *graph) user(ctx context.Context, id string) (*types.User, error) {
	if u, ok := g.users[id]; ok {
		return u, nil
	}
	u, err := getUser(ctx, g.q, id)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}
	g.users[id] = u
	return u, nil
}

// ticket resolves a ticket row: its project, assignee and labels.
func (g *graph) ticket(ctx context.Context, r ticketRow) (*types.Ticket, error) {
	t := r.ticket
	g.tickets[t.ID] = t

	var err error
	if r.projectID.Valid {
		if t.Project, err = g.project(ctx, r.projectID.String); err != nil {
			return nil, err
		}
	}
	if r.assignedTo.Valid {
		if t.AssignedTo, err = g.user(ctx, r.assignedTo.String); err != nil {
			return nil, err
		}
	}

	rows, err := g.q.QueryContext(ctx, `SELECT l.label_id, l.value FROM labels l
JOIN ticket_labels tl ON tl.label_id = l.label_id
WHERE tl.ticket_id = ?
ORDER BY l.label_id`, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load labels of ticket %s: %w", t.ID, err)
	}
	defer rows.Close()

	var labels []*types.Label
	for rows.Next() {
		var id, value string
		if err := rows.Scan(&id, &value); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		l, ok := g.labels[id]
		if !ok {
			l = &types.Label{ID: id, Value: value}
			g.labels[id] = l
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	t.SetLabels(labels...)
	return t, nil
}

// label resolves the tickets of a label. The tickets carry their scalar
// fields only.
func (g *graph) label(ctx context.Context, l *types.Label) (*types.Label, error) {
	g.labels[l.ID] = l

	rows, err := g.q.QueryContext(ctx, `SELECT t.ticket_id, t.title, t.description, t.due_date, t.done, t.project_id, t.assigned_to
FROM tickets t
JOIN ticket_labels tl ON tl.ticket_id = t.ticket_id
WHERE tl.label_id = ?
ORDER BY t.ticket_id`, l.ID)
	if err != nil {
		return nil, fmt.Errorf("load tickets of label %s: %w", l.ID, err)
	}
	scanned, err := scanTicketRows(rows)
	if err != nil {
		return nil, err
	}

	tickets := make([]*types.Ticket, 0, len(scanned))
	for _, r := range scanned {
		t, ok := g.tickets[r.ticket.ID]
		if !ok {
			t = r.ticket
			g.tickets[t.ID] = t
		}
		tickets = append(tickets, t)
	}
	l.SetTickets(tickets...)
	return l, nil
}
