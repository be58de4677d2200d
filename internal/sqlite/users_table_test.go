package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func TestUsersCRUD(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	u := &types.User{Login: "ada", FirstName: "Ada", Email: "ada@example.com"}
	id, err := b.Users().Set(ctx, "", u)
	require.NoError(t, err)

	got, err := b.Users().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	got.LastName = "Lovelace"
	_, err = b.Users().Set(ctx, id, got)
	require.NoError(t, err)

	byLogin, err := b.Users().Fetch(ctx, types.Filter{"login": "ada"})
	require.NoError(t, err)
	require.Len(t, byLogin, 1)
	assert.Equal(t, "Lovelace", byLogin[0].LastName)

	require.NoError(t, b.Users().Delete(ctx, id))
	_, err = b.Users().Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestUsersValidation(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.Users().Set(ctx, "", &types.User{})
	assert.ErrorIs(t, err, types.ErrInvalidData)
	_, err = b.Users().Set(ctx, "", &types.User{Login: "x", Email: "not-an-email"})
	assert.ErrorIs(t, err, types.ErrInvalidData)
}

func TestUsersDuplicateLogin(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	first := &types.User{Login: "ada"}
	_, err := b.Users().Set(ctx, "", first)
	require.NoError(t, err)

	_, err = b.Users().Set(ctx, "", &types.User{Login: "ada"})
	assert.ErrorIs(t, err, types.ErrDuplicateLogin)

	// Re-saving the owner of the login is fine.
	_, err = b.Users().Set(ctx, first.ID, first)
	assert.NoError(t, err)
}

func TestUserDeleteUnassignsTickets(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	u := &types.User{Login: "ada"}
	_, err := b.Users().Set(ctx, "", u)
	require.NoError(t, err)
	tk := saveTicket(t, b, &types.Ticket{Title: "x", AssignedTo: u})

	require.NoError(t, b.Users().Delete(ctx, u.ID))

	got, err := b.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AssignedTo)
}
