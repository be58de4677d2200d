package resource

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/bugtracker/internal/identity"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Tickets serves ticket requests. Besides CRUD it pages tickets, lists the
// current user's tickets and edits a ticket's labels.
type Tickets struct {
	*Resource[*types.Ticket, types.TicketPatch]
	labels   types.Table[*types.Label]
	identity identity.Provider
}

// TicketPage is one page of tickets ordered by due date.
type TicketPage struct {
	Tickets []*types.Ticket `json:"tickets" yaml:"tickets"`
	Page    int             `json:"page" yaml:"page"`
	Size    int             `json:"size" yaml:"size"`
	Total   int             `json:"total" yaml:"total"`
}

// Page returns page (zero based) of size tickets ordered by due date, along
// with the total number of tickets. Tickets without a due date come last,
// after every dated ticket, so the first pages show what is due soonest.
// The count and the page are queried concurrently.
func (r *Tickets) Page(ctx context.Context, page, size int) (*TicketPage, error) {
	r.log.Debug("request to get a page of tickets", "page", page, "size", size)
	if page < 0 || size <= 0 {
		return nil, fmt.Errorf("%w: page %d size %d", types.ErrInvalidFilter, page, size)
	}

	out := &TicketPage{Page: page, Size: size}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := r.table.Count(gctx, nil)
		if err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}
		out.Total = n
		return nil
	})
	g.Go(func() error {
		tickets, err := r.table.Fetch(gctx, types.Filter{
			"order_by": types.OrderDueDate,
			"limit":    size,
			"offset":   page * size,
		})
		if err != nil {
			return fmt.Errorf("fetch tickets: %w", err)
		}
		out.Tickets = tickets
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSelf returns the tickets assigned to the current user ordered by due
// date. Without a current user the result is empty.
func (r *Tickets) ListSelf(ctx context.Context) ([]*types.Ticket, error) {
	r.log.Debug("request to get tickets of the current user")
	u, err := r.identity.CurrentUser(ctx)
	if errors.Is(err, types.ErrNoCurrentUser) {
		return []*types.Ticket{}, nil
	}
	if err != nil {
		return nil, err
	}
	return r.table.Fetch(ctx, types.Filter{"assigned_to": u.ID, "order_by": types.OrderDueDate})
}

// AddLabel attaches a stored label to a stored ticket and saves the ticket.
func (r *Tickets) AddLabel(ctx context.Context, ticketID, labelID string) (*types.Ticket, error) {
	r.log.Debug("request to add label to ticket", "ticket", ticketID, "label", labelID)
	t, l, err := r.pair(ctx, ticketID, labelID)
	if err != nil {
		return nil, err
	}
	return r.save(ctx, t.AddLabel(l))
}

// RemoveLabel detaches a label from a ticket and saves the ticket. Removing a
// label the ticket does not carry changes nothing.
func (r *Tickets) RemoveLabel(ctx context.Context, ticketID, labelID string) (*types.Ticket, error) {
	r.log.Debug("request to remove label from ticket", "ticket", ticketID, "label", labelID)
	t, l, err := r.pair(ctx, ticketID, labelID)
	if err != nil {
		return nil, err
	}
	return r.save(ctx, t.RemoveLabel(l))
}

// SetLabels replaces the ticket's labels with exactly the given labels.
func (r *Tickets) SetLabels(ctx context.Context, ticketID string, labelIDs ...string) (*types.Ticket, error) {
	r.log.Debug("request to set ticket labels", "ticket", ticketID, "labels", labelIDs)
	t, err := r.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	labels := make([]*types.Label, 0, len(labelIDs))
	for _, id := range labelIDs {
		l, err := r.labels.Get(ctx, id)
		if err != nil {
			return nil, notFound("label", err)
		}
		labels = append(labels, l)
	}
	t.SetLabels(labels...)
	return r.save(ctx, t)
}

func (r *Tickets) pair(ctx context.Context, ticketID, labelID string) (*types.Ticket, *types.Label, error) {
	t, err := r.Get(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	l, err := r.labels.Get(ctx, labelID)
	if err != nil {
		return nil, nil, notFound("label", err)
	}
	return t, l, nil
}

func (r *Tickets) save(ctx context.Context, t *types.Ticket) (*types.Ticket, error) {
	if _, err := r.table.Set(ctx, t.ID, t); err != nil {
		return nil, fmt.Errorf("save ticket: %w", err)
	}
	return t, nil
}
