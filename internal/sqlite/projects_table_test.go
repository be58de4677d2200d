package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func TestProjectsCRUD(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := &types.Project{Name: "core", Description: "engine"}
	id, err := b.Projects().Set(ctx, "", p)
	require.NoError(t, err)

	got, err := b.Projects().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *p, *got)

	n, err := b.Projects().Count(ctx, types.Filter{"name": "core"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, b.Projects().Delete(ctx, id))
	assert.ErrorIs(t, b.Projects().Delete(ctx, id), types.ErrNotFound)
}

func TestProjectDeleteKeepsTickets(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := &types.Project{Name: "core"}
	_, err := b.Projects().Set(ctx, "", p)
	require.NoError(t, err)
	tk := saveTicket(t, b, &types.Ticket{Title: "x", Project: p})

	require.NoError(t, b.Projects().Delete(ctx, p.ID))

	got, err := b.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Project)
	n, err := b.Tickets().Count(ctx, types.Filter{"project_id": p.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}
