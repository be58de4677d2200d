package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/bugtracker/internal/resource"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func (a *app) newProjectCmd() *cobra.Command {
	cmd := storeGroup("project", "Manage projects")
	c := &crud[*types.Project, types.ProjectPatch]{
		a:      a,
		entity: "project",
		res: func(s *resource.Service) *resource.Resource[*types.Project, types.ProjectPatch] {
			return s.Projects
		},
		fresh: func() *types.Project { return &types.Project{} },
		setID: func(p *types.Project, id string) { p.ID = id },
		grid:  func(_ *printer, ps ...*types.Project) grid { return projectGrid(ps...) },
		fields: func(fs *pflag.FlagSet) {
			fs.String("name", "", "project name")
			fs.String("description", "", "project description")
		},
		fill: func(fs *pflag.FlagSet, p *types.Project) error {
			setString(fs, "name", func(v string) { p.Name = v })
			setString(fs, "description", func(v string) { p.Description = v })
			return nil
		},
		patch: func(fs *pflag.FlagSet, p *types.ProjectPatch, id string) error {
			if p.ID == "" {
				p.ID = id
			}
			setString(fs, "name", func(v string) { p.Name = types.Some(v) })
			setString(fs, "description", func(v string) { p.Description = types.Some(v) })
			return nil
		},
		filters: func(fs *pflag.FlagSet) {
			fs.String("name", "", "only projects with this name")
		},
		filter: func(fs *pflag.FlagSet, f types.Filter) error {
			setString(fs, "name", func(v string) { f["name"] = v })
			return nil
		},
	}
	cmd.AddCommand(c.commands()...)
	return cmd
}
