package service

import (
	"testing"
	"time"

	"shareit/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItem(t *testing.T) {
	f := setupService(t)
	owner := f.user(t, "Owner", "owner@example.com")

	tests := []struct {
		name    string
		ownerID int64
		input   ItemInput
		kind    apperr.Kind
	}{
		{
			name:    "unknown owner",
			ownerID: 42,
			input:   ItemInput{Name: ptr("Drill"), Description: ptr("d"), Available: ptr(true)},
			kind:    apperr.KindNotFound,
		},
		{
			name:    "missing availability",
			ownerID: owner.ID,
			input:   ItemInput{Name: ptr("Drill"), Description: ptr("d")},
			kind:    apperr.KindValidation,
		},
		{
			name:    "blank name",
			ownerID: owner.ID,
			input:   ItemInput{Name: ptr(" "), Description: ptr("d"), Available: ptr(true)},
			kind:    apperr.KindValidation,
		},
		{
			name:    "unknown request",
			ownerID: owner.ID,
			input:   ItemInput{Name: ptr("Drill"), Description: ptr("d"), Available: ptr(true), RequestID: ptr(int64(7))},
			kind:    apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddItem(f.ctx, tt.ownerID, tt.input)
			assertKind(t, err, tt.kind)
		})
	}

	it := f.item(t, owner.ID, "Drill", "Cordless drill")
	assert.Equal(t, owner.ID, it.OwnerID)
	assert.True(t, it.Available)
	assert.NotNil(t, it.Comments)
	assert.Nil(t, it.LastBooking)
}

func TestUpdateItem(t *testing.T) {
	f := setupService(t)
	owner := f.user(t, "Owner", "owner@example.com")
	other := f.user(t, "Other", "other@example.com")
	it := f.item(t, owner.ID, "Drill", "Cordless drill")

	_, err := f.svc.UpdateItem(f.ctx, other.ID, it.ID, ItemInput{Name: ptr("Stolen")})
	assertKind(t, err, apperr.KindNotFound)

	updated, err := f.svc.UpdateItem(f.ctx, owner.ID, it.ID, ItemInput{Available: ptr(false), Name: ptr("")})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.Equal(t, "Drill", updated.Name)

	updated, err = f.svc.UpdateItem(f.ctx, owner.ID, it.ID, ItemInput{Description: ptr("Drill with two batteries")})
	require.NoError(t, err)
	assert.Equal(t, "Drill with two batteries", updated.Description)
	assert.False(t, updated.Available)
}

func TestSearchItems(t *testing.T) {
	f := setupService(t)
	owner := f.user(t, "Owner", "owner@example.com")
	drill := f.item(t, owner.ID, "Drill", "Cordless drill")
	f.item(t, owner.ID, "Дрель", "Ударная дрель")
	hidden := f.item(t, owner.ID, "Old drill", "Broken")
	_, err := f.svc.UpdateItem(f.ctx, owner.ID, hidden.ID, ItemInput{Available: ptr(false)})
	require.NoError(t, err)

	tests := []struct {
		text  string
		count int
	}{
		{text: "DrIlL", count: 1},
		{text: "cordless", count: 1},
		{text: "ДРЕЛЬ", count: 1},
		{text: "", count: 0},
		{text: "   ", count: 0},
		{text: "hammer", count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			found, err := f.svc.SearchItems(f.ctx, tt.text)
			require.NoError(t, err)
			assert.NotNil(t, found)
			assert.Len(t, found, tt.count)
		})
	}

	found, err := f.svc.SearchItems(f.ctx, "drill")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, drill.ID, found[0].ID)
}

func TestListItemsByOwnerCarriesBookings(t *testing.T) {
	f := setupService(t)
	owner := f.user(t, "Owner", "owner@example.com")
	booker := f.user(t, "Booker", "booker@example.com")
	drill := f.item(t, owner.ID, "Drill", "Cordless drill")
	f.item(t, owner.ID, "Saw", "Hand saw")

	past := f.book(t, booker.ID, drill.ID, baseTime.Add(-2*time.Hour), baseTime.Add(-time.Hour))
	next := f.book(t, booker.ID, drill.ID, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))

	items, err := f.svc.ListItemsByOwner(f.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].LastBooking)
	require.NotNil(t, items[0].NextBooking)
	assert.Equal(t, past.ID, items[0].LastBooking.ID)
	assert.Equal(t, next.ID, items[0].NextBooking.ID)
	assert.Nil(t, items[1].LastBooking)

	last, err := f.svc.LastBooking(f.ctx, drill.ID)
	require.NoError(t, err)
	assert.Equal(t, booker.ID, last.BookerID)

	none, err := f.svc.ListItemsByOwner(f.ctx, booker.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRemoveItem(t *testing.T) {
	f := setupService(t)
	owner := f.user(t, "Owner", "owner@example.com")
	other := f.user(t, "Other", "other@example.com")
	drill := f.item(t, owner.ID, "Drill", "Cordless drill")
	f.item(t, owner.ID, "Saw", "Hand saw")
	f.book(t, other.ID, drill.ID, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))

	assertKind(t, f.svc.RemoveItem(f.ctx, other.ID, drill.ID), apperr.KindNotFound)
	require.NoError(t, f.svc.RemoveItem(f.ctx, owner.ID, drill.ID))

	_, err := f.svc.GetItem(f.ctx, drill.ID)
	assertKind(t, err, apperr.KindNotFound)
	bookings, err := f.svc.ListBookings(f.ctx, other.ID, "ALL", Page{})
	require.NoError(t, err)
	assert.Empty(t, bookings)

	require.NoError(t, f.svc.RemoveItemsByOwner(f.ctx, owner.ID))
	items, err := f.svc.ListItemsByOwner(f.ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
