package cli

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// crud builds the create, get, list, update, patch and delete subcommands
// of one entity type. The hooks adapt the shared commands to the entity's
// fields.
type crud[E types.Entity, P resource.Patch[E]] struct {
	a      *app
	entity string
	res    func(*resource.Service) *resource.Resource[E, P]

	fresh func() E
	setID func(E, string)
	grid  func(*printer, ...E) grid

	// fields registers the field flags shared by create, update and patch.
	fields func(*pflag.FlagSet)
	// fill copies the changed field flags into an entity.
	fill func(*pflag.FlagSet, E) error
	// patch copies the changed field flags into a patch, addressing id
	// unless the patch already names one. id is empty when the patch came
	// from --data, which must name its own ID.
	patch func(*pflag.FlagSet, *P, string) error

	// filters registers list filter flags; filter reads them back.
	filters func(*pflag.FlagSet)
	filter  func(*pflag.FlagSet, types.Filter) error
}

func (c *crud[E, P]) commands() []*cobra.Command {
	return []*cobra.Command{
		c.createCmd(), c.getCmd(), c.listCmd(),
		c.updateCmd(), c.patchCmd(), c.deleteCmd(),
	}
}

func (c *crud[E, P]) show(cmd *cobra.Command, e E) error {
	p := c.a.printer(cmd)
	return p.print(e, c.grid(p, e))
}

func (c *crud[E, P]) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + c.entity,
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := c.fresh()
			if err := decodeData(cmd, e); err != nil {
				return err
			}
			if err := c.fill(cmd.Flags(), e); err != nil {
				return err
			}
			saved, err := c.res(c.a.svc).Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			return c.show(cmd, saved)
		},
	}
	c.fields(cmd.Flags())
	dataFlag(cmd)
	return cmd
}

func (c *crud[E, P]) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a " + c.entity,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.res(c.a.svc).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.show(cmd, e)
		},
	}
}

func (c *crud[E, P]) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + c.entity + "s",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := pageFilter(cmd.Flags())
			if err != nil {
				return err
			}
			if c.filter != nil {
				if err := c.filter(cmd.Flags(), filter); err != nil {
					return err
				}
			}
			list, err := c.res(c.a.svc).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			list = orEmpty(list)
			p := c.a.printer(cmd)
			return p.print(list, c.grid(p, list...))
		},
	}
	if c.filters != nil {
		c.filters(cmd.Flags())
	}
	cmd.Flags().Int("limit", 0, "maximum number of results")
	cmd.Flags().Int("offset", 0, "number of results to skip")
	return cmd
}

func (c *crud[E, P]) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a " + c.entity,
		Long:  "Replace every field of a " + c.entity + ". Fields not given are cleared.\nA --data document is sent as given and must carry the ID.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := c.fresh()
			if err := decodeData(cmd, e); err != nil {
				return err
			}
			if err := c.fill(cmd.Flags(), e); err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				c.setID(e, args[0])
			}
			saved, err := c.res(c.a.svc).Update(cmd.Context(), args[0], e)
			if err != nil {
				return err
			}
			return c.show(cmd, saved)
		},
	}
	c.fields(cmd.Flags())
	dataFlag(cmd)
	return cmd
}

func (c *crud[E, P]) patchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Change some fields of a " + c.entity,
		Long:  "Merge the given fields into a " + c.entity + ". Fields not given keep their stored values.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p P
			if err := decodePatch(cmd, &p); err != nil {
				return err
			}
			addressed := args[0]
			if cmd.Flags().Changed("data") {
				addressed = ""
			}
			if err := c.patch(cmd.Flags(), &p, addressed); err != nil {
				return err
			}
			saved, err := c.res(c.a.svc).PartialUpdate(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			return c.show(cmd, saved)
		},
	}
	c.fields(cmd.Flags())
	dataFlag(cmd)
	return cmd
}

func (c *crud[E, P]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + c.entity,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.res(c.a.svc).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return c.a.printer(cmd).deleted(c.entity, args[0])
		},
	}
}

func dataFlag(cmd *cobra.Command) {
	cmd.Flags().String("data", "", `JSON document with the fields to send ("-" reads stdin); flags override it`)
}

// readData returns the --data document, reading stdin for "-". It returns
// nil when the flag is not given.
func readData(cmd *cobra.Command) ([]byte, error) {
	data, _ := cmd.Flags().GetString("data")
	switch data {
	case "":
		return nil, nil
	case "-":
		return io.ReadAll(cmd.InOrStdin())
	}
	return []byte(data), nil
}

// decodeData unmarshals the --data document, if any, into v.
func decodeData(cmd *cobra.Command, v any) error {
	raw, err := readData(cmd)
	if err != nil || raw == nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return usageErrorf("invalid --data: %v", err)
	}
	return nil
}

// decodePatch unmarshals the --data document, if any, into a patch. Keys the
// patch does not carry, such as relationships, are rejected.
func decodePatch(cmd *cobra.Command, p any) error {
	raw, err := readData(cmd)
	if err != nil || raw == nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return usageErrorf("invalid --data for patch: %v", err)
	}
	return nil
}

func pageFilter(fs *pflag.FlagSet) (types.Filter, error) {
	filter := types.Filter{}
	for _, name := range []string{"limit", "offset"} {
		if !fs.Changed(name) {
			continue
		}
		n, err := fs.GetInt(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, usageErrorf("--%s must not be negative", name)
		}
		filter[name] = n
	}
	return filter, nil
}

// setString calls set with the flag's value when the flag was given.
func setString(fs *pflag.FlagSet, name string, set func(string)) {
	if !fs.Changed(name) {
		return
	}
	v, _ := fs.GetString(name)
	set(v)
}

func setBool(fs *pflag.FlagSet, name string, set func(bool)) {
	if !fs.Changed(name) {
		return
	}
	v, _ := fs.GetBool(name)
	set(v)
}
