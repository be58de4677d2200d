// Package sqlite implements the SQLite storage backend for the bug tracker.
//
// JSONL files in the data directory are the source of truth. Attach rebuilds
// a fresh SQLite database from them, every query runs against SQLite, and
// writes rewrite the affected JSONL files atomically.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// dbFileName is the SQLite file created inside DataDir.
const dbFileName = "bugtracker.db"

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// dirty holds tables whose JSONL file is behind SQLite. Only the
	// on_close strategy leaves entries here between writes.
	dirty map[string]bool

	projects *projectsTable
	tickets  *ticketsTable
	labels   *labelsTable
	users    *usersTable
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	b := &Backend{dirty: make(map[string]bool)}
	b.projects = &projectsTable{backend: b}
	b.tickets = &ticketsTable{backend: b}
	b.labels = &labelsTable{backend: b}
	b.users = &usersTable{backend: b}
	return b
}

// Projects returns the projects table.
func (b *Backend) Projects() types.Table[*types.Project] { return b.projects }

// Tickets returns the tickets table.
func (b *Backend) Tickets() types.Table[*types.Ticket] { return b.tickets }

// Labels returns the labels table.
func (b *Backend) Labels() types.Table[*types.Label] { return b.labels }

// Users returns the users table.
func (b *Backend) Users() types.Table[*types.User] { return b.users }

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite database and
// loads every JSONL file into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir == "" {
		config.DataDir = "."
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The database is a cache of the JSONL files; start from scratch.
	dbPath := filepath.Join(config.DataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := initJSONLFiles(config.DataDir); err != nil {
		db.Close()
		return err
	}

	if err := loadAllJSONL(db, config.DataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dirty = make(map[string]bool)
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend. Tables left dirty by the
// on_close strategy are written out first. After Detach, all operations
// return ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if err := b.flushLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	b.db = nil
	b.attached = false
	return nil
}

// persistLocked records that the given tables changed. With the immediate
// strategy the JSONL files are rewritten now; with on_close they are marked
// dirty and written by Detach. The caller must hold b.mu for writing.
func (b *Backend) persistLocked(tables ...string) error {
	for _, name := range tables {
		b.dirty[name] = true
	}
	if b.config.EffectiveSyncStrategy() == types.SyncOnClose {
		return nil
	}
	return b.flushLocked()
}

// flushLocked writes every dirty table to its JSONL file. A table stays
// dirty if its write fails so that a later flush retries it.
func (b *Backend) flushLocked() error {
	names := make([]string, 0, len(b.dirty))
	for name := range b.dirty {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := persistTableJSONL(b.db, b.config.DataDir, name); err != nil {
			return err
		}
		delete(b.dirty, name)
	}
	return nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// timestampLayout is fixed width so that stored timestamps sort as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// now returns the value stored in created_at and updated_at.
func now() string {
	return time.Now().UTC().Format(timestampLayout)
}
