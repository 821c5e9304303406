package service

import (
	"context"
	"errors"
	"time"

	"shareit/pkg/apperr"
	"shareit/pkg/models"

	"gorm.io/gorm"
)

type BookingInput struct {
	ItemID *int64               `json:"itemId"`
	Start  models.LocalDateTime `json:"start"`
	End    models.LocalDateTime `json:"end"`
}

// CreateBooking checks its preconditions in a fixed order; the first failing one is reported.
func (s *Service) CreateBooking(ctx context.Context, bookerID int64, in BookingInput) (BookingView, error) {
	start := in.Start.UTC().Truncate(time.Second)
	end := in.End.UTC().Truncate(time.Second)
	if !end.After(start) {
		return BookingView{}, apperr.InvalidRequest("booking end %s must be after start %s", in.End, in.Start)
	}

	var booking models.Booking
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		booker, err := findUser(tx, bookerID)
		if err != nil {
			return err
		}
		if in.ItemID == nil {
			return apperr.Validation("itemId is required")
		}
		// the row lock serializes overlap checks for the same item
		item, err := findItem(tx, *in.ItemID, true)
		if err != nil {
			return err
		}
		if !item.Available {
			return apperr.Validation("item with id %d is not available for booking", item.ID)
		}
		if item.OwnerID == bookerID {
			return apperr.NotFound("owner cannot book own item %d", item.ID)
		}

		// any earlier booking of the item blocks its period, whatever its status
		var overlapping int64
		err = tx.Model(&models.Booking{}).
			Where("item_id = ?", item.ID).
			Where("start_date <= ? AND end_date >= ?", end, start).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			s.log.Warn("booking overlaps an existing booking", "item_id", item.ID)
			return apperr.InvalidRequest("item with id %d is already booked for that period", item.ID)
		}

		booking = models.Booking{
			Start:    start,
			End:      end,
			ItemID:   item.ID,
			BookerID: booker.ID,
			Status:   models.StatusWaiting,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		booking.Item = item
		booking.Booker = booker
		return nil
	})
	if err != nil {
		return BookingView{}, err
	}
	bookingTransitions.WithLabelValues(string(models.StatusWaiting)).Inc()
	s.log.Info("booking created", "booking_id", booking.ID, "item_id", booking.ItemID)
	return bookingView(&booking), nil
}

// ApproveBooking lets the item owner move a WAITING booking to APPROVED or REJECTED.
func (s *Service) ApproveBooking(ctx context.Context, bookingID, userID int64, approved bool) (BookingView, error) {
	var booking *models.Booking
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.InvalidRequest("user with id %d not found", userID)
		}
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID, true)
		if err != nil {
			return err
		}
		item, err := findItem(tx, booking.ItemID, false)
		if err != nil {
			return err
		}
		if item.OwnerID != user.ID {
			return apperr.NotFound("user %d is not the owner of item %d", userID, item.ID)
		}
		next := models.StatusRejected
		if approved {
			next = models.StatusApproved
		}
		if err := transition(booking, next); err != nil {
			return err
		}
		if err := tx.Model(booking).Update("status", booking.Status).Error; err != nil {
			return err
		}
		booking.Item = item
		booking.Booker, err = findUser(tx, booking.BookerID)
		return err
	})
	if err != nil {
		return BookingView{}, err
	}
	bookingTransitions.WithLabelValues(string(booking.Status)).Inc()
	s.log.Info("booking status changed", "booking_id", booking.ID, "status", booking.Status)
	return bookingView(booking), nil
}

// CancelBooking lets the booker withdraw a booking that is still WAITING.
func (s *Service) CancelBooking(ctx context.Context, bookingID, userID int64) (BookingView, error) {
	var booking *models.Booking
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		booking, err = findBooking(tx, bookingID, true)
		if err != nil {
			return err
		}
		if booking.BookerID != user.ID {
			return apperr.NotFound("booking with id %d not found", bookingID)
		}
		if err := transition(booking, models.StatusCanceled); err != nil {
			return err
		}
		if err := tx.Model(booking).Update("status", booking.Status).Error; err != nil {
			return err
		}
		booking.Booker = user
		booking.Item, err = findItem(tx, booking.ItemID, false)
		return err
	})
	if err != nil {
		return BookingView{}, err
	}
	bookingTransitions.WithLabelValues(string(booking.Status)).Inc()
	s.log.Info("booking status changed", "booking_id", booking.ID, "status", booking.Status)
	return bookingView(booking), nil
}

// transition applies the booking state machine: only WAITING may move, and never back to WAITING.
func transition(b *models.Booking, next models.BookingStatus) error {
	if b.Status == models.StatusApproved {
		return apperr.Validation("booking %d is already approved", b.ID)
	}
	if b.Status != models.StatusWaiting {
		return apperr.Validation("booking %d cannot move from %s to %s", b.ID, b.Status, next)
	}
	b.Status = next
	return nil
}

// GetBooking is visible only to the booker and the item owner.
func (s *Service) GetBooking(ctx context.Context, bookingID, userID int64) (BookingView, error) {
	var booking models.Booking
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, userID); err != nil {
			return err
		}
		err := db.Preload("Item").Preload("Booker").First(&booking, bookingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("booking with id %d not found", bookingID)
		}
		if err != nil {
			return err
		}
		if booking.BookerID != userID && (booking.Item == nil || booking.Item.OwnerID != userID) {
			return apperr.NotFound("booking with id %d not found", bookingID)
		}
		return nil
	})
	if err != nil {
		return BookingView{}, err
	}
	return bookingView(&booking), nil
}

// ListBookings returns the caller's own bookings filtered by state.
func (s *Service) ListBookings(ctx context.Context, bookerID int64, state string, page Page) ([]BookingView, error) {
	return s.listBookings(ctx, bookerID, state, page, func(q *gorm.DB) *gorm.DB {
		return q.Where("booker_id = ?", bookerID)
	})
}

// ListOwnerBookings returns bookings of every item the caller owns filtered by state.
func (s *Service) ListOwnerBookings(ctx context.Context, ownerID int64, state string, page Page) ([]BookingView, error) {
	return s.listBookings(ctx, ownerID, state, page, func(q *gorm.DB) *gorm.DB {
		return q.Where("item_id IN (SELECT id FROM items WHERE owner_id = ?)", ownerID)
	})
}

func (s *Service) listBookings(ctx context.Context, userID int64, state string, page Page, scope func(*gorm.DB) *gorm.DB) ([]BookingView, error) {
	st, ok := models.ParseBookingState(state)
	if !ok {
		return nil, apperr.NotFound("unknown state: %s", state)
	}
	now := s.Now()
	var bookings []models.Booking
	err := s.read(ctx, func(db *gorm.DB) error {
		if _, err := findUser(db, userID); err != nil {
			return err
		}
		q := scope(db.Model(&models.Booking{}))
		q = withState(q, st, now)
		return page.apply(q).Preload("Item").Preload("Booker").Find(&bookings).Error
	})
	if err != nil {
		return nil, err
	}
	views := make([]BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, bookingView(&bookings[i]))
	}
	return views, nil
}

func withState(q *gorm.DB, state models.BookingState, now time.Time) *gorm.DB {
	switch state {
	case models.StateCurrent:
		return q.Where("start_date < ? AND end_date > ?", now, now).Order("end_date DESC").Order("id DESC")
	case models.StatePast:
		return q.Where("end_date < ?", now).Order("start_date DESC").Order("id DESC")
	case models.StateFuture:
		return q.Where("start_date > ?", now).Order("start_date DESC").Order("id DESC")
	case models.StateWaiting:
		return q.Where("status = ?", models.StatusWaiting).Order("end_date DESC").Order("id DESC")
	case models.StateRejected:
		return q.Where("status = ?", models.StatusRejected).Order("end_date DESC").Order("id DESC")
	case models.StateCanceled:
		return q.Where("status = ?", models.StatusCanceled).Order("start_date DESC").Order("id DESC")
	default:
		return q.Order("start_date DESC").Order("id DESC")
	}
}

// LastBooking is the latest non-rejected booking of the item that has already started.
func (s *Service) LastBooking(ctx context.Context, itemID int64) (BookingShort, error) {
	var booking *models.Booking
	err := s.read(ctx, func(db *gorm.DB) error {
		var err error
		booking, err = lastBooking(db, itemID, s.Now())
		return err
	})
	if err != nil {
		return BookingShort{}, err
	}
	if booking == nil {
		return BookingShort{}, apperr.NotFound("no last booking for item %d", itemID)
	}
	return *bookingShort(booking), nil
}

// NextBooking is the earliest non-rejected booking of the item that has not started yet.
func (s *Service) NextBooking(ctx context.Context, itemID int64) (BookingShort, error) {
	var booking *models.Booking
	err := s.read(ctx, func(db *gorm.DB) error {
		var err error
		booking, err = nextBooking(db, itemID, s.Now())
		return err
	})
	if err != nil {
		return BookingShort{}, err
	}
	if booking == nil {
		return BookingShort{}, apperr.NotFound("no next booking for item %d", itemID)
	}
	return *bookingShort(booking), nil
}

func lastBooking(db *gorm.DB, itemID int64, now time.Time) (*models.Booking, error) {
	return firstBooking(db.Where("item_id = ? AND start_date < ? AND status <> ?", itemID, now, models.StatusRejected).
		Order("start_date DESC"))
}

func nextBooking(db *gorm.DB, itemID int64, now time.Time) (*models.Booking, error) {
	return firstBooking(db.Where("item_id = ? AND start_date > ? AND status <> ?", itemID, now, models.StatusRejected).
		Order("start_date ASC"))
}

// firstBooking reports absence as a nil booking rather than an error.
func firstBooking(q *gorm.DB) (*models.Booking, error) {
	var bookings []models.Booking
	if err := q.Limit(1).Find(&bookings).Error; err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, nil
	}
	return &bookings[0], nil
}
