package types

import (
	"bytes"
	"encoding/json"

	"cloud.google.com/go/civil"
)

// Optional records whether a patch field was given. A JSON null decodes to
// an unset Optional, the same as an absent key, so a merge-patch can never
// clear a field.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the field was given.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// apply stores the value into dst when set.
func (o Optional[T]) apply(dst *T) {
	if o.set {
		*dst = o.value
	}
}

// MarshalJSON implements json.Marshaler. An unset Optional encodes as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// TicketPatch is a merge-patch document for a ticket. Relationships are not
// patchable; use the association methods or a full update.
type TicketPatch struct {
	ID          string               `json:"id"`
	Title       Optional[string]     `json:"title"`
	Description Optional[string]     `json:"description"`
	DueDate     Optional[civil.Date] `json:"dueDate"`
	Done        Optional[bool]       `json:"done"`
}

// PatchID returns the ID the patch addresses.
func (p TicketPatch) PatchID() string { return p.ID }

// Apply overwrites every field of t that is set in p. Fields are merged
// independently of each other.
func (p TicketPatch) Apply(t *Ticket) {
	p.Title.apply(&t.Title)
	p.Description.apply(&t.Description)
	if d, ok := p.DueDate.Get(); ok {
		t.DueDate = &d
	}
	p.Done.apply(&t.Done)
}

// LabelPatch is a merge-patch document for a label.
type LabelPatch struct {
	ID    string           `json:"id"`
	Value Optional[string] `json:"value"`
}

// PatchID returns the ID the patch addresses.
func (p LabelPatch) PatchID() string { return p.ID }

// Apply overwrites every field of l that is set in p.
func (p LabelPatch) Apply(l *Label) {
	p.Value.apply(&l.Value)
}

// ProjectPatch is a merge-patch document for a project.
type ProjectPatch struct {
	ID          string           `json:"id"`
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

// PatchID returns the ID the patch addresses.
func (p ProjectPatch) PatchID() string { return p.ID }

// Apply overwrites every field of pr that is set in p.
func (p ProjectPatch) Apply(pr *Project) {
	p.Name.apply(&pr.Name)
	p.Description.apply(&pr.Description)
}

// UserPatch is a merge-patch document for a user.
type UserPatch struct {
	ID        string           `json:"id"`
	Login     Optional[string] `json:"login"`
	FirstName Optional[string] `json:"firstName"`
	LastName  Optional[string] `json:"lastName"`
	Email     Optional[string] `json:"email"`
}

// PatchID returns the ID the patch addresses.
func (p UserPatch) PatchID() string { return p.ID }

// Apply overwrites every field of u that is set in p.
func (p UserPatch) Apply(u *User) {
	p.Login.apply(&u.Login)
	p.FirstName.apply(&u.FirstName)
	p.LastName.apply(&u.LastName)
	p.Email.apply(&u.Email)
}
