package service

import (
	"sync"
	"testing"
	"time"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingSetup struct {
	*fixture
	owner, booker, stranger UserView
	drill                   ItemView
}

func setupBookings(t *testing.T) *bookingSetup {
	f := setupService(t)
	s := &bookingSetup{fixture: f}
	s.owner = f.user(t, "Owner", "owner@example.com")
	s.booker = f.user(t, "Booker", "booker@example.com")
	s.stranger = f.user(t, "Stranger", "stranger@example.com")
	s.drill = f.item(t, s.owner.ID, "Drill", "Cordless drill")
	return s
}

func TestCreateBooking(t *testing.T) {
	s := setupBookings(t)
	start, end := baseTime.Add(time.Hour), baseTime.Add(2*time.Hour)

	b := s.book(t, s.booker.ID, s.drill.ID, start, end)
	assert.Equal(t, models.StatusWaiting, b.Status)
	assert.Equal(t, s.drill.ID, b.Item.ID)
	assert.Equal(t, "Drill", b.Item.Name)
	assert.Equal(t, s.booker.ID, b.Booker.ID)
	assert.True(t, start.Equal(b.Start.Time))

	tests := []struct {
		name     string
		bookerID int64
		input    BookingInput
		kind     apperr.Kind
	}{
		{
			name:     "end equals start",
			bookerID: s.booker.ID,
			input:    bookingInput(s.drill.ID, start, start),
			kind:     apperr.KindInvalidRequest,
		},
		{
			name:     "end before start",
			bookerID: s.booker.ID,
			input:    bookingInput(s.drill.ID, end, start),
			kind:     apperr.KindInvalidRequest,
		},
		{
			name:     "unknown booker",
			bookerID: 999,
			input:    bookingInput(s.drill.ID, start.Add(24*time.Hour), end.Add(24*time.Hour)),
			kind:     apperr.KindNotFound,
		},
		{
			name:     "unknown item",
			bookerID: s.booker.ID,
			input:    bookingInput(999, start.Add(24*time.Hour), end.Add(24*time.Hour)),
			kind:     apperr.KindNotFound,
		},
		{
			name:     "missing item",
			bookerID: s.booker.ID,
			input:    BookingInput{Start: models.LocalDateTime{Time: start}, End: models.LocalDateTime{Time: end}},
			kind:     apperr.KindValidation,
		},
		{
			name:     "owner books own item",
			bookerID: s.owner.ID,
			input:    bookingInput(s.drill.ID, start.Add(24*time.Hour), end.Add(24*time.Hour)),
			kind:     apperr.KindNotFound,
		},
		{
			name:     "touching an active booking overlaps",
			bookerID: s.stranger.ID,
			input:    bookingInput(s.drill.ID, end, end.Add(time.Hour)),
			kind:     apperr.KindInvalidRequest,
		},
		{
			name:     "inside an active booking",
			bookerID: s.stranger.ID,
			input:    bookingInput(s.drill.ID, start.Add(10*time.Minute), start.Add(20*time.Minute)),
			kind:     apperr.KindInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.CreateBooking(s.ctx, tt.bookerID, tt.input)
			assertKind(t, err, tt.kind)
		})
	}

	t.Run("adjacent period is free", func(t *testing.T) {
		s.book(t, s.stranger.ID, s.drill.ID, end.Add(time.Second), end.Add(time.Hour))
	})

	t.Run("unavailable item", func(t *testing.T) {
		_, err := s.svc.UpdateItem(s.ctx, s.owner.ID, s.drill.ID, ItemInput{Available: ptr(false)})
		require.NoError(t, err)
		_, err = s.svc.CreateBooking(s.ctx, s.stranger.ID, bookingInput(s.drill.ID, start.Add(48*time.Hour), end.Add(48*time.Hour)))
		assertKind(t, err, apperr.KindValidation)
	})
}

func TestClosedBookingStillBlocksThePeriod(t *testing.T) {
	s := setupBookings(t)
	start, end := baseTime.Add(time.Hour), baseTime.Add(2*time.Hour)

	rejected := s.book(t, s.booker.ID, s.drill.ID, start, end)
	got, err := s.svc.ApproveBooking(s.ctx, rejected.ID, s.owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)

	later := start.Add(24 * time.Hour)
	canceled := s.book(t, s.booker.ID, s.drill.ID, later, later.Add(time.Hour))
	got, err = s.svc.CancelBooking(s.ctx, canceled.ID, s.booker.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, got.Status)

	tests := []struct {
		name       string
		start, end time.Time
	}{
		{name: "same period as a rejected booking", start: start, end: end},
		{name: "inside a rejected booking", start: start.Add(10 * time.Minute), end: start.Add(20 * time.Minute)},
		{name: "same period as a canceled booking", start: later, end: later.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.svc.CreateBooking(s.ctx, s.stranger.ID, bookingInput(s.drill.ID, tt.start, tt.end))
			assertKind(t, err, apperr.KindInvalidRequest)
		})
	}
}

func TestApproveBooking(t *testing.T) {
	s := setupBookings(t)
	b := s.book(t, s.booker.ID, s.drill.ID, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))

	_, err := s.svc.ApproveBooking(s.ctx, b.ID, 999, true)
	assertKind(t, err, apperr.KindInvalidRequest)

	_, err = s.svc.ApproveBooking(s.ctx, b.ID, s.booker.ID, true)
	assertKind(t, err, apperr.KindNotFound)

	_, err = s.svc.ApproveBooking(s.ctx, 999, s.owner.ID, true)
	assertKind(t, err, apperr.KindNotFound)

	approved, err := s.svc.ApproveBooking(s.ctx, b.ID, s.owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "Booker", approved.Booker.Name)

	_, err = s.svc.ApproveBooking(s.ctx, b.ID, s.owner.ID, true)
	assertKind(t, err, apperr.KindValidation)
	_, err = s.svc.ApproveBooking(s.ctx, b.ID, s.owner.ID, false)
	assertKind(t, err, apperr.KindValidation)

	got, err := s.svc.GetBooking(s.ctx, b.ID, s.booker.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestCancelBooking(t *testing.T) {
	s := setupBookings(t)
	start, end := baseTime.Add(time.Hour), baseTime.Add(2*time.Hour)
	b := s.book(t, s.booker.ID, s.drill.ID, start, end)

	_, err := s.svc.CancelBooking(s.ctx, b.ID, s.owner.ID)
	assertKind(t, err, apperr.KindNotFound)

	canceled, err := s.svc.CancelBooking(s.ctx, b.ID, s.booker.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)

	_, err = s.svc.CancelBooking(s.ctx, b.ID, s.booker.ID)
	assertKind(t, err, apperr.KindValidation)
	_, err = s.svc.ApproveBooking(s.ctx, b.ID, s.owner.ID, true)
	assertKind(t, err, apperr.KindValidation)

	_, err = s.svc.CreateBooking(s.ctx, s.stranger.ID, bookingInput(s.drill.ID, start, end))
	assertKind(t, err, apperr.KindInvalidRequest)

	list, err := s.svc.ListBookings(s.ctx, s.booker.ID, "CANCELED", Page{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestGetBookingVisibility(t *testing.T) {
	s := setupBookings(t)
	b := s.book(t, s.booker.ID, s.drill.ID, baseTime.Add(time.Hour), baseTime.Add(2*time.Hour))

	for _, id := range []int64{s.booker.ID, s.owner.ID} {
		got, err := s.svc.GetBooking(s.ctx, b.ID, id)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := s.svc.GetBooking(s.ctx, b.ID, s.stranger.ID)
	assertKind(t, err, apperr.KindNotFound)
	_, err = s.svc.GetBooking(s.ctx, b.ID, 999)
	assertKind(t, err, apperr.KindNotFound)
	_, err = s.svc.GetBooking(s.ctx, 999, s.booker.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestListBookingsByState(t *testing.T) {
	s := setupBookings(t)
	past := s.book(t, s.booker.ID, s.drill.ID, baseTime.Add(-3*time.Hour), baseTime.Add(-2*time.Hour))
	current := s.book(t, s.booker.ID, s.drill.ID, baseTime.Add(-time.Hour), baseTime.Add(time.Hour))
	future := s.book(t, s.booker.ID, s.drill.ID, baseTime.Add(2*time.Hour), baseTime.Add(3*time.Hour))

	_, err := s.svc.ApproveBooking(s.ctx, past.ID, s.owner.ID, true)
	require.NoError(t, err)
	_, err = s.svc.ApproveBooking(s.ctx, future.ID, s.owner.ID, false)
	require.NoError(t, err)

	tests := []struct {
		state    string
		expected []int64
	}{
		{state: "", expected: []int64{future.ID, current.ID, past.ID}},
		{state: "ALL", expected: []int64{future.ID, current.ID, past.ID}},
		{state: "past", expected: []int64{past.ID}},
		{state: "CURRENT", expected: []int64{current.ID}},
		{state: "FUTURE", expected: []int64{future.ID}},
		{state: "WAITING", expected: []int64{current.ID}},
		{state: "REJECTED", expected: []int64{future.ID}},
		{state: "CANCELED", expected: []int64{}},
	}

	ids := func(views []BookingView) []int64 {
		out := make([]int64, 0, len(views))
		for _, v := range views {
			out = append(out, v.ID)
		}
		return out
	}

	for _, tt := range tests {
		t.Run("booker "+tt.state, func(t *testing.T) {
			list, err := s.svc.ListBookings(s.ctx, s.booker.ID, tt.state, Page{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(list))
		})
		t.Run("owner "+tt.state, func(t *testing.T) {
			list, err := s.svc.ListOwnerBookings(s.ctx, s.owner.ID, tt.state, Page{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(list))
		})
	}

	t.Run("unknown state", func(t *testing.T) {
		_, err := s.svc.ListBookings(s.ctx, s.booker.ID, "SOMETIMES", Page{})
		assertKind(t, err, apperr.KindNotFound)
		_, err = s.svc.ListOwnerBookings(s.ctx, s.owner.ID, "SOMETIMES", Page{})
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.svc.ListBookings(s.ctx, 999, "ALL", Page{})
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("paged", func(t *testing.T) {
		list, err := s.svc.ListBookings(s.ctx, s.booker.ID, "ALL", Page{Offset: 1, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{current.ID}, ids(list))
	})

	t.Run("owner without items", func(t *testing.T) {
		list, err := s.svc.ListOwnerBookings(s.ctx, s.stranger.ID, "ALL", Page{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("time moves on", func(t *testing.T) {
		s.now = baseTime.Add(4 * time.Hour)
		list, err := s.svc.ListBookings(s.ctx, s.booker.ID, "PAST", Page{})
		require.NoError(t, err)
		assert.Equal(t, []int64{future.ID, current.ID, past.ID}, ids(list))
		s.now = baseTime
	})

	t.Run("rejected bookings are not next", func(t *testing.T) {
		_, err := s.svc.NextBooking(s.ctx, s.drill.ID)
		assertKind(t, err, apperr.KindNotFound)
		last, err := s.svc.LastBooking(s.ctx, s.drill.ID)
		require.NoError(t, err)
		assert.Equal(t, current.ID, last.ID)
	})
}

func TestConcurrentBookingsOfTheSamePeriod(t *testing.T) {
	s := setupBookings(t)
	start, end := baseTime.Add(time.Hour), baseTime.Add(2*time.Hour)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, id := range []int64{s.booker.ID, s.stranger.ID} {
		wg.Add(1)
		go func(bookerID int64) {
			defer wg.Done()
			_, err := s.svc.CreateBooking(s.ctx, bookerID, bookingInput(s.drill.ID, start, end))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
