package sqlite

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	require.NoError(t, err)
	return d
}

func saveLabel(t *testing.T, b *Backend, value string) *types.Label {
	t.Helper()
	l := &types.Label{Value: value}
	_, err := b.Labels().Set(context.Background(), "", l)
	require.NoError(t, err)
	return l
}

func saveTicket(t *testing.T, b *Backend, tk *types.Ticket) *types.Ticket {
	t.Helper()
	_, err := b.Tickets().Set(context.Background(), "", tk)
	require.NoError(t, err)
	return tk
}

func TestTicketsCRUD(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	tickets := b.Tickets()

	tk := &types.Ticket{Title: "crash on start", Description: "segfault"}
	id, err := tickets.Set(ctx, "", tk)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, tk.ID, "generated ID is written back")

	ok, err := tickets.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := tickets.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "crash on start", got.Title)
	assert.Equal(t, "segfault", got.Description)
	assert.Nil(t, got.DueDate)
	assert.False(t, got.Done)

	got.Done = true
	_, err = tickets.Set(ctx, id, got)
	require.NoError(t, err)
	got, err = tickets.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Done)

	require.NoError(t, tickets.Delete(ctx, id))
	_, err = tickets.Get(ctx, id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, tickets.Delete(ctx, id), types.ErrNotFound)

	ok, err = tickets.Exists(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTicketsSetWithExplicitID(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	id, err := b.Tickets().Set(ctx, "fixed-id", &types.Ticket{Title: "a"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)
}

func TestTicketsInvalidArguments(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.Tickets().Get(ctx, "")
	assert.ErrorIs(t, err, types.ErrInvalidID)
	_, err = b.Tickets().Set(ctx, "", nil)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.ErrorIs(t, b.Tickets().Delete(ctx, ""), types.ErrInvalidID)
}

func TestTicketsRejectUnsavedReferences(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	tests := []struct {
		name   string
		ticket *types.Ticket
	}{
		{"project", &types.Ticket{Project: &types.Project{Name: "p"}}},
		{"assignee", &types.Ticket{AssignedTo: &types.User{Login: "u"}}},
		{"label", (&types.Ticket{}).AddLabel(&types.Label{Value: "bug"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Tickets().Set(ctx, "", tt.ticket)
			assert.ErrorIs(t, err, types.ErrUnsavedReference)
		})
	}

	n, err := b.Tickets().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTicketsRejectDanglingReferences(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	_, err := b.Tickets().Set(ctx, "", &types.Ticket{Project: &types.Project{ID: "nope"}})
	assert.ErrorIs(t, err, types.ErrDanglingReference)

	_, err = b.Tickets().Set(ctx, "", (&types.Ticket{}).AddLabel(&types.Label{ID: "nope"}))
	assert.ErrorIs(t, err, types.ErrDanglingReference)
}

func TestTicketsSaveReplacesLabels(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	bug := saveLabel(t, b, "bug")
	ui := saveLabel(t, b, "ui")
	perf := saveLabel(t, b, "perf")

	tk := &types.Ticket{Title: "slow render"}
	tk.SetLabels(bug, ui)
	saveTicket(t, b, tk)

	tk.SetLabels(ui, perf)
	_, err := b.Tickets().Set(ctx, tk.ID, tk)
	require.NoError(t, err)

	got, err := b.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	values := []string{}
	for _, l := range got.Labels() {
		values = append(values, l.Value)
	}
	assert.ElementsMatch(t, []string{"ui", "perf"}, values)

	gotBug, err := b.Labels().Get(ctx, bug.ID)
	require.NoError(t, err)
	assert.Empty(t, gotBug.Tickets(), "dropped label no longer lists the ticket")
}

func TestTicketsGetHydratesBothSides(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	bug := saveLabel(t, b, "bug")
	tk := saveTicket(t, b, (&types.Ticket{Title: "x"}).AddLabel(bug))

	got, err := b.Tickets().Get(ctx, tk.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels(), 1)
	l := got.Labels()[0]
	assert.True(t, l.HasTicket(got), "hydrated label points back at the ticket")
}

func TestTicketsFetchSharesInstances(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	bug := saveLabel(t, b, "bug")
	saveTicket(t, b, (&types.Ticket{Title: "a"}).AddLabel(bug))
	saveTicket(t, b, (&types.Ticket{Title: "b"}).AddLabel(bug))

	got, err := b.Tickets().Fetch(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, got[0].Labels(), 1)
	require.Len(t, got[1].Labels(), 1)
	assert.Same(t, got[0].Labels()[0], got[1].Labels()[0])
	assert.Len(t, got[0].Labels()[0].Tickets(), 2)
}

func TestTicketsFetchFilters(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	p := &types.Project{Name: "core"}
	_, err := b.Projects().Set(ctx, "", p)
	require.NoError(t, err)
	u := &types.User{Login: "ada"}
	_, err = b.Users().Set(ctx, "", u)
	require.NoError(t, err)
	bug := saveLabel(t, b, "bug")

	saveTicket(t, b, &types.Ticket{Title: "one", Project: p})
	saveTicket(t, b, &types.Ticket{Title: "two", AssignedTo: u, Done: true})
	saveTicket(t, b, (&types.Ticket{Title: "three", AssignedTo: u}).AddLabel(bug))

	tests := []struct {
		name   string
		filter types.Filter
		want   []string
	}{
		{"all", nil, []string{"one", "two", "three"}},
		{"project", types.Filter{"project_id": p.ID}, []string{"one"}},
		{"assignee", types.Filter{"assigned_to": u.ID}, []string{"two", "three"}},
		{"label", types.Filter{"label_id": bug.ID}, []string{"three"}},
		{"done", types.Filter{"done": true}, []string{"two"}},
		{"not done", types.Filter{"done": false}, []string{"one", "three"}},
		{"limit", types.Filter{"limit": 2}, []string{"one", "two"}},
		{"offset", types.Filter{"offset": 1}, []string{"two", "three"}},
		{"limit and offset", types.Filter{"limit": 1, "offset": 1}, []string{"two"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Tickets().Fetch(ctx, tt.filter)
			require.NoError(t, err)
			titles := make([]string, 0, len(got))
			for _, tk := range got {
				titles = append(titles, tk.Title)
			}
			assert.Equal(t, tt.want, titles)

			n, err := b.Tickets().Count(ctx, tt.filter)
			require.NoError(t, err)
			if _, paged := tt.filter["limit"]; !paged {
				if _, off := tt.filter["offset"]; !off {
					assert.Equal(t, len(tt.want), n)
				}
			}
		})
	}
}

func TestTicketsFetchBadFilter(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	for _, f := range []types.Filter{
		{"color": "red"},
		{"done": "yes"},
		{"project_id": 7},
		{"limit": "ten"},
		{"offset": -1},
		{"order_by": "priority"},
	} {
		_, err := b.Tickets().Fetch(ctx, f)
		assert.ErrorIs(t, err, types.ErrInvalidFilter, "%v", f)
	}
}

func TestTicketsOrderByDueDate(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)

	d := func(s string) *civil.Date {
		v := mustDate(t, s)
		return &v
	}
	saveTicket(t, b, &types.Ticket{Title: "none"})
	saveTicket(t, b, &types.Ticket{Title: "late", DueDate: d("2026-12-01")})
	saveTicket(t, b, &types.Ticket{Title: "early", DueDate: d("2026-01-15")})

	got, err := b.Tickets().Fetch(ctx, types.Filter{"order_by": types.OrderDueDate})
	require.NoError(t, err)
	titles := []string{}
	for _, tk := range got {
		titles = append(titles, tk.Title)
	}
	assert.Equal(t, []string{"early", "late", "none"}, titles)
}

func TestTicketDeleteRemovesLabelRows(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBackend(t)
	bug := saveLabel(t, b, "bug")
	tk := saveTicket(t, b, (&types.Ticket{Title: "x"}).AddLabel(bug))

	require.NoError(t, b.Tickets().Delete(ctx, tk.ID))

	got, err := b.Labels().Get(ctx, bug.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tickets())
}
