package types

import "sync"

// associationMu guards every Ticket.labels and Label.tickets set. A single
// lock lets SetLabels and SetTickets touch any number of entities without
// lock ordering, and no reader ever sees one side updated without the other.
// Readers take it exclusively because lookups re-key newly saved members.
var associationMu sync.Mutex

// link adds each side to the other. The caller must hold associationMu.
func link(t *Ticket, l *Label) {
	t.labels.add(l)
	l.tickets.add(t)
}

// unlink removes each side from the other, including from any stored
// instance that shares an ID with the argument. The caller must hold
// associationMu.
func unlink(t *Ticket, l *Label) {
	if stored, ok := t.labels.remove(l); ok && stored != l {
		stored.tickets.remove(t)
	}
	if stored, ok := l.tickets.remove(t); ok && stored != t {
		stored.labels.remove(l)
	}
}

// SetLabels replaces the ticket's labels with exactly the given labels.
// Labels dropped from the ticket lose it from their ticket sets; every given
// label gains it. Calling SetLabels with no labels detaches the ticket from
// all of its labels. Nil labels are ignored.
func (t *Ticket) SetLabels(labels ...*Label) {
	associationMu.Lock()
	defer associationMu.Unlock()

	for _, old := range t.labels.items() {
		if stored, ok := old.tickets.remove(t); ok && stored != t {
			stored.labels.remove(old)
		}
	}
	t.labels.clear()
	for _, l := range labels {
		if l != nil {
			link(t, l)
		}
	}
}

// AddLabel associates the label with the ticket on both sides. Adding a
// label that is already present changes nothing.
func (t *Ticket) AddLabel(l *Label) *Ticket {
	if l == nil {
		return t
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	link(t, l)
	return t
}

// RemoveLabel dissociates the label from the ticket on both sides. Removing
// an absent label changes nothing.
func (t *Ticket) RemoveLabel(l *Label) *Ticket {
	if l == nil {
		return t
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	unlink(t, l)
	return t
}

// Labels returns a snapshot of the ticket's labels ordered by ID; unsaved
// labels come last.
func (t *Ticket) Labels() []*Label {
	associationMu.Lock()
	defer associationMu.Unlock()
	return t.labels.items()
}

// HasLabel reports whether the label is associated with the ticket.
func (t *Ticket) HasLabel(l *Label) bool {
	if l == nil {
		return false
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	return t.labels.has(l)
}

// SetTickets replaces the label's tickets with exactly the given tickets,
// mirroring Ticket.SetLabels.
func (l *Label) SetTickets(tickets ...*Ticket) {
	associationMu.Lock()
	defer associationMu.Unlock()

	for _, old := range l.tickets.items() {
		if stored, ok := old.labels.remove(l); ok && stored != l {
			stored.tickets.remove(old)
		}
	}
	l.tickets.clear()
	for _, t := range tickets {
		if t != nil {
			link(t, l)
		}
	}
}

// AddTicket associates the ticket with the label on both sides.
func (l *Label) AddTicket(t *Ticket) *Label {
	if t == nil {
		return l
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	link(t, l)
	return l
}

// RemoveTicket dissociates the ticket from the label on both sides.
func (l *Label) RemoveTicket(t *Ticket) *Label {
	if t == nil {
		return l
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	unlink(t, l)
	return l
}

// Tickets returns a snapshot of the label's tickets ordered by ID; unsaved
// tickets come last.
func (l *Label) Tickets() []*Ticket {
	associationMu.Lock()
	defer associationMu.Unlock()
	return l.tickets.items()
}

// HasTicket reports whether the ticket is associated with the label.
func (l *Label) HasTicket(t *Ticket) bool {
	if t == nil {
		return false
	}
	associationMu.Lock()
	defer associationMu.Unlock()
	return l.tickets.has(t)
}
