package types

import (
	"context"
	"errors"
)

// Filter narrows a Fetch or Count. Keys are table specific; every table
// accepts "limit" and "offset" (int). An empty or nil filter matches every
// entity in the table.
type Filter map[string]any

// Table provides uniform CRUD operations for a single entity type.
// E is the pointer type of the entity (for example *Ticket).
type Table[E any] interface {
	// Get retrieves the entity with the given ID, with its references
	// hydrated one level deep.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(ctx context.Context, id string) (E, error)

	// Exists reports whether an entity with the given ID is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Set creates or updates an entity. When id is empty and the entity has
	// no ID, a new UUID v7 is generated and written back into the entity.
	// Returns the actual ID used (generated or provided).
	Set(ctx context.Context, id string, entity E) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(ctx context.Context, id string) error

	// Fetch returns all entities matching the filter.
	Fetch(ctx context.Context, filter Filter) ([]E, error)

	// Count returns the number of entities matching the filter. The limit
	// and offset keys are ignored.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Ticket orderings accepted by the tickets table's "order_by" filter key.
const (
	OrderCreated = "created"  // creation order, the default
	OrderDueDate = "due_date" // earliest due date first, undated last
)

// Table operation errors.
var (
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidID         = errors.New("invalid entity ID")
	ErrInvalidData       = errors.New("invalid entity data")
	ErrInvalidFilter     = errors.New("invalid filter value type")
	ErrUnsavedReference  = errors.New("referenced entity has no ID")
	ErrDanglingReference = errors.New("referenced entity does not exist")
	ErrDuplicateLogin    = errors.New("login already in use")
)

// Request validation errors. These are raised before storage is touched.
var (
	ErrIdentifierConflict = errors.New("a new entity cannot already have an ID")
	ErrIdentifierMissing  = errors.New("entity ID is missing")
	ErrIdentifierMismatch = errors.New("entity ID does not match the addressed ID")
)

// Identity errors.
var (
	ErrNoCurrentUser = errors.New("no current user")
)
