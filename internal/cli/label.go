package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func (a *app) newLabelCmd() *cobra.Command {
	cmd := storeGroup("label", "Manage labels")
	c := &crud[*types.Label, types.LabelPatch]{
		a:      a,
		entity: "label",
		res: func(s *resource.Service) *resource.Resource[*types.Label, types.LabelPatch] {
			return s.Labels.Resource
		},
		fresh: func() *types.Label { return &types.Label{} },
		setID: func(l *types.Label, id string) { l.ID = id },
		grid:  func(_ *printer, ls ...*types.Label) grid { return labelGrid(ls...) },
		fields: func(fs *pflag.FlagSet) {
			fs.String("value", "", "label text")
			fs.StringSlice("ticket", nil, "ID of a ticket carrying the label (repeatable; create and update only)")
		},
		fill: func(fs *pflag.FlagSet, l *types.Label) error {
			setString(fs, "value", func(v string) { l.Value = v })
			if fs.Changed("ticket") {
				ids, _ := fs.GetStringSlice("ticket")
				tickets := make([]*types.Ticket, 0, len(ids))
				for _, id := range ids {
					tickets = append(tickets, &types.Ticket{ID: id})
				}
				l.SetTickets(tickets...)
			}
			return nil
		},
		patch: func(fs *pflag.FlagSet, p *types.LabelPatch, id string) error {
			if fs.Changed("ticket") {
				return usageErrorf("--ticket cannot be patched; use add-ticket, remove-ticket or update")
			}
			if p.ID == "" {
				p.ID = id
			}
			setString(fs, "value", func(v string) { p.Value = types.Some(v) })
			return nil
		},
		filters: func(fs *pflag.FlagSet) {
			fs.String("value", "", "only labels with this text")
			fs.String("ticket", "", "only labels carried by this ticket")
		},
		filter: func(fs *pflag.FlagSet, f types.Filter) error {
			setString(fs, "value", func(v string) { f["value"] = v })
			setString(fs, "ticket", func(v string) { f["ticket_id"] = v })
			return nil
		},
	}
	cmd.AddCommand(c.commands()...)
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add-ticket <label-id> <ticket-id>",
			Short: "Attach a ticket to a label",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				l, err := a.svc.Labels.AddTicket(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return c.show(cmd, l)
			},
		},
		&cobra.Command{
			Use:   "remove-ticket <label-id> <ticket-id>",
			Short: "Detach a ticket from a label",
			Args:  exactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				l, err := a.svc.Labels.RemoveTicket(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return c.show(cmd, l)
			},
		},
	)
	return cmd
}
