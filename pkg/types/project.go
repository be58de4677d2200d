package types

import (
	"fmt"
	"log/slog"
)

// Project groups tickets. Tickets reference their project; the project does
// not list its tickets.
type Project struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EntityID returns the project ID, or "" for a nil project.
func (p *Project) EntityID() string {
	if p == nil {
		return ""
	}
	return p.ID
}

// Equal reports whether p and o denote the same project (see SameEntity).
func (p *Project) Equal(o *Project) bool { return SameEntity(p, o) }

func (p *Project) String() string {
	return fmt.Sprintf("Project{id=%s, name=%q}", p.ID, p.Name)
}

// LogValue implements slog.LogValuer.
func (p *Project) LogValue() slog.Value {
	return slog.GroupValue(slog.String("id", p.ID), slog.String("name", p.Name))
}
