package resource

import (
	"github.com/mesh-intelligence/bugtracker/internal/identity"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Service groups the resources of every entity over one store.
type Service struct {
	Projects *Resource[*types.Project, types.ProjectPatch]
	Tickets  *Tickets
	Labels   *Labels
	Users    *Resource[*types.User, types.UserPatch]
}

// NewService builds the resources for store. id resolves the current user
// for Tickets.ListSelf.
func NewService(store types.Store, id identity.Provider) *Service {
	return &Service{
		Projects: newResource[*types.Project, types.ProjectPatch]("project", store.Projects(), nil),
		Tickets: &Tickets{
			Resource: newResource[*types.Ticket, types.TicketPatch]("ticket", store.Tickets(), nil),
			labels:   store.Labels(),
			identity: id,
		},
		Labels: &Labels{
			Resource: newResource[*types.Label, types.LabelPatch]("label", store.Labels(), nil),
			tickets:  store.Tickets(),
		},
		Users: newResource[*types.User, types.UserPatch]("user", store.Users(), (*types.User).Validate),
	}
}
