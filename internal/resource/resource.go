// Package resource implements the request rules that sit between the CLI and
// the store: identifier checks, existence probes, merge-patch and the
// association operations.
package resource

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// Patch is a merge-patch document for entities of type E.
type Patch[E any] interface {
	PatchID() string
	Apply(E)
}

// Resource serves the CRUD requests of one entity type.
type Resource[E types.Entity, P Patch[E]] struct {
	name     string
	table    types.Table[E]
	validate func(E) error
	log      *slog.Logger
}

func newResource[E types.Entity, P Patch[E]](name string, table types.Table[E], validate func(E) error) *Resource[E, P] {
	return &Resource[E, P]{
		name:     name,
		table:    table,
		validate: validate,
		log:      slog.Default().With("resource", name),
	}
}

func (r *Resource[E, P]) check(e E) error {
	if r.validate == nil {
		return nil
	}
	return r.validate(e)
}

// Create saves a new entity. An entity that already has an ID is rejected
// with types.ErrIdentifierConflict.
func (r *Resource[E, P]) Create(ctx context.Context, e E) (E, error) {
	r.log.Debug("request to save "+r.name, r.name, e)
	var zero E
	if e.EntityID() != "" {
		return zero, reject(r.name, KeyIDExists, types.ErrIdentifierConflict)
	}
	if err := r.check(e); err != nil {
		return zero, err
	}
	if _, err := r.table.Set(ctx, "", e); err != nil {
		return zero, fmt.Errorf("create %s: %w", r.name, err)
	}
	return e, nil
}

// Update replaces the stored entity addressed by id with e. Every field is
// overwritten, including ones e leaves empty.
func (r *Resource[E, P]) Update(ctx context.Context, id string, e E) (E, error) {
	r.log.Debug("request to update "+r.name, "id", id, r.name, e)
	var zero E
	if err := checkID(r.name, id, e.EntityID()); err != nil {
		return zero, err
	}
	if err := r.mustExist(ctx, id); err != nil {
		return zero, err
	}
	if err := r.check(e); err != nil {
		return zero, err
	}
	if _, err := r.table.Set(ctx, id, e); err != nil {
		return zero, fmt.Errorf("update %s: %w", r.name, err)
	}
	return e, nil
}

// PartialUpdate merges the fields present in p into the stored entity and
// saves the result. Absence is established before anything is loaded.
func (r *Resource[E, P]) PartialUpdate(ctx context.Context, id string, p P) (E, error) {
	r.log.Debug("request to partially update "+r.name, "id", id)
	var zero E
	if err := checkID(r.name, id, p.PatchID()); err != nil {
		return zero, err
	}
	if err := r.mustExist(ctx, id); err != nil {
		return zero, err
	}
	e, err := r.table.Get(ctx, id)
	if err != nil {
		return zero, notFound(r.name, err)
	}
	p.Apply(e)
	if err := r.check(e); err != nil {
		return zero, err
	}
	if _, err := r.table.Set(ctx, id, e); err != nil {
		return zero, fmt.Errorf("patch %s: %w", r.name, err)
	}
	return e, nil
}

// Get returns the entity with the given ID.
func (r *Resource[E, P]) Get(ctx context.Context, id string) (E, error) {
	r.log.Debug("request to get "+r.name, "id", id)
	e, err := r.table.Get(ctx, id)
	if err != nil {
		var zero E
		return zero, notFound(r.name, err)
	}
	return e, nil
}

// List returns the entities matching filter.
func (r *Resource[E, P]) List(ctx context.Context, filter types.Filter) ([]E, error) {
	r.log.Debug("request to get all "+r.name+"s", "filter", filter)
	return r.table.Fetch(ctx, filter)
}

// Delete removes the entity with the given ID.
func (r *Resource[E, P]) Delete(ctx context.Context, id string) error {
	r.log.Debug("request to delete "+r.name, "id", id)
	return notFound(r.name, r.table.Delete(ctx, id))
}

func (r *Resource[E, P]) mustExist(ctx context.Context, id string) error {
	ok, err := r.table.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check %s %s: %w", r.name, id, err)
	}
	if !ok {
		return reject(r.name, KeyIDNotFound, types.ErrNotFound)
	}
	return nil
}
