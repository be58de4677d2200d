package types

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
)

// Ticket is a tracked bug or task. Its labels are managed through
// SetLabels, AddLabel and RemoveLabel, which keep Label.Tickets in step.
type Ticket struct {
	ID          string
	Title       string
	Description string
	DueDate     *civil.Date // nil when the ticket has no due date.
	Done        bool
	Project     *Project // Optional reference.
	AssignedTo  *User    // Optional reference.

	labels refSet[*Label]
}

// EntityID returns the ticket ID, or "" for a nil ticket.
func (t *Ticket) EntityID() string {
	if t == nil {
		return ""
	}
	return t.ID
}

// Equal reports whether t and o denote the same ticket (see SameEntity).
func (t *Ticket) Equal(o *Ticket) bool { return SameEntity(t, o) }

func (t *Ticket) String() string {
	return fmt.Sprintf("Ticket{id=%s, title=%q, done=%t}", t.ID, t.Title, t.Done)
}

// LogValue implements slog.LogValuer. Labels are reported by count so that
// logging never walks the association graph.
func (t *Ticket) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", t.ID),
		slog.String("title", t.Title),
		slog.Bool("done", t.Done),
		slog.Int("labels", len(t.Labels())),
	)
}

// ticketView is the serialized shape of a ticket. Labels appear without
// their tickets.
type ticketView struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate     *civil.Date `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Done        bool        `json:"done" yaml:"done"`
	Project     *Project    `json:"project,omitempty" yaml:"project,omitempty"`
	AssignedTo  *User       `json:"assignedTo,omitempty" yaml:"assignedTo,omitempty"`
	Labels      []labelRef  `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// ticketRef is a ticket as seen from one of its labels: scalar fields only.
type ticketRef struct {
	ID          string      `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate     *civil.Date `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Done        bool        `json:"done" yaml:"done"`
}

func (t *Ticket) view() ticketView {
	v := ticketView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Done:        t.Done,
		Project:     t.Project,
		AssignedTo:  t.AssignedTo,
	}
	for _, l := range t.Labels() {
		v.Labels = append(v.Labels, labelRef{ID: l.ID, Value: l.Value})
	}
	return v
}

func (t *Ticket) ref() ticketRef {
	return ticketRef{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Done:        t.Done,
	}
}

// MarshalJSON implements json.Marshaler.
func (t *Ticket) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.view())
}

// MarshalYAML implements yaml.Marshaler.
func (t *Ticket) MarshalYAML() (any, error) {
	return t.view(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Labels in the document become
// new Label instances associated on both sides.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	var v ticketView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.ID = v.ID
	t.Title = v.Title
	t.Description = v.Description
	t.DueDate = v.DueDate
	t.Done = v.Done
	t.Project = v.Project
	t.AssignedTo = v.AssignedTo
	labels := make([]*Label, 0, len(v.Labels))
	for _, r := range v.Labels {
		labels = append(labels, &Label{ID: r.ID, Value: r.Value})
	}
	t.SetLabels(labels...)
	return nil
}
