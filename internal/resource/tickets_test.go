package resource

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func titles(tickets []*types.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.Title)
	}
	return out
}

func TestTicketsPage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "")
	for i, title := range []string{"c", "a", "b", "undated"} {
		tk := &types.Ticket{Title: title}
		if title != "undated" {
			tk.DueDate = &civil.Date{Year: 2026, Month: 1, Day: []int{3, 1, 2}[i]}
		}
		_, err := svc.Tickets.Create(ctx, tk)
		require.NoError(t, err)
	}

	first, err := svc.Tickets.Page(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, []string{"a", "b", "c"}, titles(first.Tickets))

	second, err := svc.Tickets.Page(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"undated"}, titles(second.Tickets))

	_, err = svc.Tickets.Page(ctx, 0, 0)
	assert.ErrorIs(t, err, types.ErrInvalidFilter)
}

func TestTicketsListSelf(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "ada")
	ada, err := svc.Users.Create(ctx, &types.User{Login: "ada"})
	require.NoError(t, err)
	bob, err := svc.Users.Create(ctx, &types.User{Login: "bob"})
	require.NoError(t, err)

	_, err = svc.Tickets.Create(ctx, &types.Ticket{Title: "mine", AssignedTo: ada})
	require.NoError(t, err)
	_, err = svc.Tickets.Create(ctx, &types.Ticket{Title: "theirs", AssignedTo: bob})
	require.NoError(t, err)

	got, err := svc.Tickets.ListSelf(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine"}, titles(got))
}

func TestTicketsListSelfWithoutUser(t *testing.T) {
	svc, _ := newTestService(t, "")

	got, err := svc.Tickets.ListSelf(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTicketsAddAndRemoveLabel(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "")
	l, err := svc.Labels.Create(ctx, &types.Label{Value: "bug"})
	require.NoError(t, err)
	tk, err := svc.Tickets.Create(ctx, &types.Ticket{Title: "t1"})
	require.NoError(t, err)

	got, err := svc.Tickets.AddLabel(ctx, tk.ID, l.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels(), 1)

	gotLabel, err := svc.Labels.Get(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, gotLabel.Tickets(), 1)
	assert.Equal(t, tk.ID, gotLabel.Tickets()[0].ID)

	_, err = svc.Tickets.AddLabel(ctx, tk.ID, l.ID)
	require.NoError(t, err, "adding twice is harmless")

	got, err = svc.Tickets.RemoveLabel(ctx, tk.ID, l.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Labels())

	gotLabel, err = svc.Labels.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, gotLabel.Tickets())
}

func TestTicketsAddLabelMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "")
	tk, err := svc.Tickets.Create(ctx, &types.Ticket{Title: "t1"})
	require.NoError(t, err)

	_, err = svc.Tickets.AddLabel(ctx, tk.ID, "missing")
	requireKey(t, err, KeyIDNotFound, types.ErrNotFound)

	_, err = svc.Tickets.AddLabel(ctx, "missing", "missing")
	requireKey(t, err, KeyIDNotFound, types.ErrNotFound)
}

func TestTicketsSetLabels(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "")
	bug, err := svc.Labels.Create(ctx, &types.Label{Value: "bug"})
	require.NoError(t, err)
	ui, err := svc.Labels.Create(ctx, &types.Label{Value: "ui"})
	require.NoError(t, err)
	tk, err := svc.Tickets.Create(ctx, (&types.Ticket{Title: "t1"}).AddLabel(bug))
	require.NoError(t, err)

	got, err := svc.Tickets.SetLabels(ctx, tk.ID, ui.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels(), 1)
	assert.Equal(t, "ui", got.Labels()[0].Value)

	got, err = svc.Tickets.SetLabels(ctx, tk.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Labels())
}

func TestLabelsAddAndRemoveTicket(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, "")
	l, err := svc.Labels.Create(ctx, &types.Label{Value: "bug"})
	require.NoError(t, err)
	t1, err := svc.Tickets.Create(ctx, &types.Ticket{Title: "t1"})
	require.NoError(t, err)
	t2, err := svc.Tickets.Create(ctx, &types.Ticket{Title: "t2"})
	require.NoError(t, err)

	_, err = svc.Labels.AddTicket(ctx, l.ID, t1.ID)
	require.NoError(t, err)
	got, err := svc.Labels.AddTicket(ctx, l.ID, t2.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tickets(), 2)

	got, err = svc.Labels.RemoveTicket(ctx, l.ID, t1.ID)
	require.NoError(t, err)
	require.Len(t, got.Tickets(), 1)
	assert.Equal(t, t2.ID, got.Tickets()[0].ID)

	stored, err := svc.Tickets.Get(ctx, t1.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Labels())
}
