// Package service holds the domain rules of the sharing platform: users, items, bookings,
// comments and item requests. Every write runs inside a single store transaction.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"shareit/pkg/apperr"
	"shareit/pkg/database"
	"shareit/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now, letting tests move time past a booking's end.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock in UTC at second precision, the precision stored timestamps carry.
func (s *Service) Now() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.classify(s.db.WithContext(ctx).Transaction(fn))
}

func (s *Service) read(ctx context.Context, fn func(db *gorm.DB) error) error {
	return s.classify(fn(s.db.WithContext(ctx)))
}

func (s *Service) classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	if database.IsUniqueViolation(err) {
		return apperr.Conflict("unique constraint violated: %v", err)
	}
	s.log.Error("store operation failed", "err", err)
	return apperr.Internal(err)
}

// Page bounds a listing; a zero Limit means no bounds.
type Page struct {
	Offset int
	Limit  int
}

// OffsetPage treats from as the index of the first element.
func OffsetPage(from, size *int) (Page, error) {
	var p Page
	if from != nil {
		if *from < 0 {
			return Page{}, apperr.Validation("from must not be negative, got %d", *from)
		}
		p.Offset = *from
	}
	if size != nil {
		if *size <= 0 {
			return Page{}, apperr.Validation("size must be positive, got %d", *size)
		}
		p.Limit = *size
	}
	return p, nil
}

// NumberedPage treats from as a 0-based page number; both values are needed to page at all.
func NumberedPage(from, size *int) (Page, error) {
	if from == nil || size == nil {
		return Page{}, nil
	}
	if *from < 0 || *size <= 0 {
		return Page{}, apperr.Validation("invalid page number %d or page size %d", *from, *size)
	}
	maxPage := math.MaxInt / *size
	if *from > maxPage {
		return Page{}, apperr.Validation("page number %d with page size %d is out of range", *from, *size)
	}
	return Page{Offset: *from * *size, Limit: *size}, nil
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}

func findUser(tx *gorm.DB, id int64) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user with id %d not found", id)
		}
		return nil, err
	}
	return &user, nil
}

func findItem(tx *gorm.DB, id int64, lock bool) (*models.Item, error) {
	var item models.Item
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item with id %d not found", id)
		}
		return nil, err
	}
	return &item, nil
}

func findBooking(tx *gorm.DB, id int64, lock bool) (*models.Booking, error) {
	var booking models.Booking
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("booking with id %d not found", id)
		}
		return nil, err
	}
	return &booking, nil
}
