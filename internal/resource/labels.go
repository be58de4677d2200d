package resource

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Labels serves label requests, including editing a label's tickets from the
// label side.
type Labels struct {
	*Resource[*types.Label, types.LabelPatch]
	tickets types.Table[*types.Ticket]
}

// AddTicket attaches a stored ticket to a stored label and saves the label.
func (r *Labels) AddTicket(ctx context.Context, labelID, ticketID string) (*types.Label, error) {
	r.log.Debug("request to add ticket to label", "label", labelID, "ticket", ticketID)
	l, t, err := r.pair(ctx, labelID, ticketID)
	if err != nil {
		return nil, err
	}
	return r.save(ctx, l.AddTicket(t))
}

// RemoveTicket detaches a ticket from a label and saves the label.
func (r *Labels) RemoveTicket(ctx context.Context, labelID, ticketID string) (*types.Label, error) {
	r.log.Debug("request to remove ticket from label", "label", labelID, "ticket", ticketID)
	l, t, err := r.pair(ctx, labelID, ticketID)
	if err != nil {
		return nil, err
	}
	return r.save(ctx, l.RemoveTicket(t))
}

func (r *Labels) pair(ctx context.Context, labelID, ticketID string) (*types.Label, *types.Ticket, error) {
	l, err := r.Get(ctx, labelID)
	if err != nil {
		return nil, nil, err
	}
	t, err := r.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, nil, notFound("ticket", err)
	}
	return l, t, nil
}

func (r *Labels) save(ctx context.Context, l *types.Label) (*types.Label, error) {
	if _, err := r.table.Set(ctx, l.ID, l); err != nil {
		return nil, fmt.Errorf("save label: %w", err)
	}
	return l, nil
}
