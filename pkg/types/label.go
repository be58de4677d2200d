package types

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Label tags tickets. It is the inverse side of the Ticket/Label
// association; SetTickets, AddTicket and RemoveTicket keep Ticket.Labels in
// step.
type Label struct {
	ID    string
	Value string

	tickets refSet[*Ticket]
}

// EntityID returns the label ID, or "" for a nil label.
func (l *Label) EntityID() string {
	if l == nil {
		return ""
	}
	return l.ID
}

// Equal reports whether l and o denote the same label (see SameEntity).
func (l *Label) Equal(o *Label) bool { return SameEntity(l, o) }

func (l *Label) String() string {
	return fmt.Sprintf("Label{id=%s, value=%q}", l.ID, l.Value)
}

// LogValue implements slog.LogValuer.
func (l *Label) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", l.ID),
		slog.String("value", l.Value),
		slog.Int("tickets", len(l.Tickets())),
	)
}

// labelView is the serialized shape of a label. Tickets appear with scalar
// fields only.
type labelView struct {
	ID      string      `json:"id,omitempty" yaml:"id,omitempty"`
	Value   string      `json:"value,omitempty" yaml:"value,omitempty"`
	Tickets []ticketRef `json:"tickets,omitempty" yaml:"tickets,omitempty"`
}

// labelRef is a label as seen from one of its tickets.
type labelRef struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

func (l *Label) view() labelView {
	v := labelView{ID: l.ID, Value: l.Value}
	for _, t := range l.Tickets() {
		v.Tickets = append(v.Tickets, t.ref())
	}
	return v
}

// MarshalJSON implements json.Marshaler.
func (l *Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.view())
}

// MarshalYAML implements yaml.Marshaler.
func (l *Label) MarshalYAML() (any, error) {
	return l.view(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Tickets in the document become
// new Ticket instances associated on both sides.
func (l *Label) UnmarshalJSON(data []byte) error {
	var v labelView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	l.ID = v.ID
	l.Value = v.Value
	tickets := make([]*Ticket, 0, len(v.Tickets))
	for _, r := range v.Tickets {
		tickets = append(tickets, &Ticket{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			DueDate:     r.DueDate,
			Done:        r.Done,
		})
	}
	l.SetTickets(tickets...)
	return nil
}
