package cli

import (
	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func (a *app) newTicketCmd() *cobra.Command {
	cmd := storeGroup("ticket", "Manage tickets")
	c := &crud[*types.Ticket, types.TicketPatch]{
		a:      a,
		entity: "ticket",
		res: func(s *resource.Service) *resource.Resource[*types.Ticket, types.TicketPatch] {
			return s.Tickets.Resource
		},
		fresh:  func() *types.Ticket { return &types.Ticket{} },
		setID:  func(t *types.Ticket, id string) { t.ID = id },
		grid:   (*printer).ticketGrid,
		fields: ticketFields,
		fill:   fillTicket,
		patch:  patchTicket,
		filters: func(fs *pflag.FlagSet) {
			fs.String("assignee", "", "only tickets assigned to this user ID")
			fs.String("project", "", "only tickets of this project ID")
			fs.String("label", "", "only tickets carrying this label ID")
			fs.Bool("done", false, "only done (or, with --done=false, open) tickets")
			fs.String("order", types.OrderCreated, "order: created or due_date")
		},
		filter: func(fs *pflag.FlagSet, f types.Filter) error {
			setString(fs, "assignee", func(v string) { f["assigned_to"] = v })
			setString(fs, "project", func(v string) { f["project_id"] = v })
			setString(fs, "label", func(v string) { f["label_id"] = v })
			setBool(fs, "done", func(v bool) { f["done"] = v })
			setString(fs, "order", func(v string) { f["order_by"] = v })
			return nil
		},
	}
	cmd.AddCommand(c.commands()...)
	cmd.AddCommand(
		a.newTicketPageCmd(),
		a.newTicketSelfCmd(c),
		a.newTicketLabelCmd(c, "add-label", "Attach a label to a ticket", a.addLabel),
		a.newTicketLabelCmd(c, "remove-label", "Detach a label from a ticket", a.removeLabel),
		a.newTicketSetLabelsCmd(c),
	)
	return cmd
}

func ticketFields(fs *pflag.FlagSet) {
	fs.String("title", "", "ticket title")
	fs.String("description", "", "ticket description")
	fs.String("due", "", "due date as YYYY-MM-DD (empty for none)")
	fs.Bool("done", false, "mark the ticket done")
	fs.String("project", "", "project ID (create and update only)")
	fs.String("assignee", "", "assigned user ID (create and update only)")
	fs.StringSlice("label", nil, "label ID (repeatable; create and update only)")
}

func fillTicket(fs *pflag.FlagSet, t *types.Ticket) error {
	setString(fs, "title", func(v string) { t.Title = v })
	setString(fs, "description", func(v string) { t.Description = v })
	setBool(fs, "done", func(v bool) { t.Done = v })
	if fs.Changed("due") {
		due, err := dueFlag(fs)
		if err != nil {
			return err
		}
		t.DueDate = due
	}
	setString(fs, "project", func(v string) {
		t.Project = nil
		if v != "" {
			t.Project = &types.Project{ID: v}
		}
	})
	setString(fs, "assignee", func(v string) {
		t.AssignedTo = nil
		if v != "" {
			t.AssignedTo = &types.User{ID: v}
		}
	})
	if fs.Changed("label") {
		ids, _ := fs.GetStringSlice("label")
		labels := make([]*types.Label, 0, len(ids))
		for _, id := range ids {
			labels = append(labels, &types.Label{ID: id})
		}
		t.SetLabels(labels...)
	}
	return nil
}

func patchTicket(fs *pflag.FlagSet, p *types.TicketPatch, id string) error {
	for _, name := range []string{"project", "assignee", "label"} {
		if fs.Changed(name) {
			return usageErrorf("--%s cannot be patched; use update or the label commands", name)
		}
	}
	if p.ID == "" {
		p.ID = id
	}
	setString(fs, "title", func(v string) { p.Title = types.Some(v) })
	setString(fs, "description", func(v string) { p.Description = types.Some(v) })
	setBool(fs, "done", func(v bool) { p.Done = types.Some(v) })
	if fs.Changed("due") {
		due, err := dueFlag(fs)
		if err != nil {
			return err
		}
		if due == nil {
			return usageErrorf("--due cannot clear a due date in a patch; use update")
		}
		p.DueDate = types.Some(*due)
	}
	return nil
}

// dueFlag parses --due; an empty value means no due date.
func dueFlag(fs *pflag.FlagSet) (*civil.Date, error) {
	v, _ := fs.GetString("due")
	if v == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return nil, usageErrorf("invalid --due %q: want YYYY-MM-DD", v)
	}
	return &d, nil
}

func (a *app) newTicketPageCmd() *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Show one page of tickets ordered by due date",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			pg, err := a.svc.Tickets.Page(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return a.printer(cmd).page(pg)
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&size, "size", 20, "tickets per page")
	return cmd
}

func (a *app) newTicketSelfCmd(c *crud[*types.Ticket, types.TicketPatch]) *cobra.Command {
	return &cobra.Command{
		Use:   "self",
		Short: "List the tickets assigned to the current user",
		Long:  "List the tickets assigned to the user whose login is configured as \"user\",\nearliest due date first.",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			tickets, err := a.svc.Tickets.ListSelf(cmd.Context())
			if err != nil {
				return err
			}
			p := a.printer(cmd)
			return p.print(orEmpty(tickets), c.grid(p, tickets...))
		},
	}
}

func (a *app) addLabel(cmd *cobra.Command, ticketID, labelID string) (*types.Ticket, error) {
	return a.svc.Tickets.AddLabel(cmd.Context(), ticketID, labelID)
}

func (a *app) removeLabel(cmd *cobra.Command, ticketID, labelID string) (*types.Ticket, error) {
	return a.svc.Tickets.RemoveLabel(cmd.Context(), ticketID, labelID)
}

func (a *app) newTicketLabelCmd(
	c *crud[*types.Ticket, types.TicketPatch],
	use, short string,
	op func(cmd *cobra.Command, ticketID, labelID string) (*types.Ticket, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ticket-id> <label-id>",
		Short: short,
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := op(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			return c.show(cmd, t)
		},
	}
}

func (a *app) newTicketSetLabelsCmd(c *crud[*types.Ticket, types.TicketPatch]) *cobra.Command {
	return &cobra.Command{
		Use:   "set-labels <ticket-id> [label-id...]",
		Short: "Replace a ticket's labels",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return usageErrorf("%s: requires a ticket ID", cmd.CommandPath())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.Tickets.SetLabels(cmd.Context(), args[0], args[1:]...)
			if err != nil {
				return err
			}
			return c.show(cmd, t)
		},
	}
}
