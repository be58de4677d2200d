package types

import "errors"

// Store defines the interface for backend-agnostic storage access.
// Callers attach to a backend, use the typed tables, and detach when done.
type Store interface {
	// Projects returns the projects table.
	Projects() Table[*Project]

	// Tickets returns the tickets table. Saving a ticket also replaces its
	// label associations.
	Tickets() Table[*Ticket]

	// Labels returns the labels table. Saving a label also replaces its
	// ticket associations.
	Labels() Table[*Label]

	// Users returns the users table.
	Users() Table[*User]

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, table operations return ErrStoreDetached.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
