// Package sqlite exposes the SQLite store while keeping its implementation
// internal.
package sqlite

import (
	"github.com/mesh-intelligence/bugtracker/internal/sqlite"
	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// NewStore creates a new SQLite-backed store. The store is not attached;
// call Attach with a Config to initialize it.
//
// Example:
//
//	store := sqlite.NewStore()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".bugtracker",
//	})
//	defer store.Detach()
func NewStore() types.Store {
	return sqlite.NewBackend()
}
