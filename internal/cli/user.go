package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func (a *app) newUserCmd() *cobra.Command {
	cmd := storeGroup("user", "Manage users")
	c := &crud[*types.User, types.UserPatch]{
		a:      a,
		entity: "user",
		res: func(s *resource.Service) *resource.Resource[*types.User, types.UserPatch] {
			return s.Users
		},
		fresh: func() *types.User { return &types.User{} },
		setID: func(u *types.User, id string) { u.ID = id },
		grid:  func(_ *printer, us ...*types.User) grid { return userGrid(us...) },
		fields: func(fs *pflag.FlagSet) {
			fs.String("login", "", "unique login")
			fs.String("first-name", "", "first name")
			fs.String("last-name", "", "last name")
			fs.String("email", "", "email address")
		},
		fill: func(fs *pflag.FlagSet, u *types.User) error {
			setString(fs, "login", func(v string) { u.Login = v })
			setString(fs, "first-name", func(v string) { u.FirstName = v })
			setString(fs, "last-name", func(v string) { u.LastName = v })
			setString(fs, "email", func(v string) { u.Email = v })
			return nil
		},
		patch: func(fs *pflag.FlagSet, p *types.UserPatch, id string) error {
			if p.ID == "" {
				p.ID = id
			}
			setString(fs, "login", func(v string) { p.Login = types.Some(v) })
			setString(fs, "first-name", func(v string) { p.FirstName = types.Some(v) })
			setString(fs, "last-name", func(v string) { p.LastName = types.Some(v) })
			setString(fs, "email", func(v string) { p.Email = types.Some(v) })
			return nil
		},
		filters: func(fs *pflag.FlagSet) {
			fs.String("login", "", "only the user with this login")
		},
		filter: func(fs *pflag.FlagSet, f types.Filter) error {
			setString(fs, "login", func(v string) { f["login"] = v })
			return nil
		},
	}
	cmd.AddCommand(c.commands()...)
	return cmd
}
