package models

import (
	"strings"
	"time"
)

type User struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:512;not null;uniqueIndex"`
}

func (User) TableName() string { return "users" }

type Item struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"size:1000;not null"`
	Available   bool   `gorm:"not null"`
	OwnerID     int64  `gorm:"not null;index"`
	RequestID   *int64 `gorm:"index"`

	Owner *User `gorm:"foreignKey:OwnerID"`
}

func (Item) TableName() string { return "items" }

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID       int64         `gorm:"primaryKey"`
	Start    time.Time     `gorm:"column:start_date;not null;index"`
	End      time.Time     `gorm:"column:end_date;not null"`
	ItemID   int64         `gorm:"not null;index"`
	BookerID int64         `gorm:"not null;index"`
	Status   BookingStatus `gorm:"size:20;not null;default:'WAITING'"`

	Item   *Item `gorm:"foreignKey:ItemID"`
	Booker *User `gorm:"foreignKey:BookerID"`
}

func (Booking) TableName() string { return "bookings" }

// Overlaps reports whether the closed intervals [start, end] and [b.Start, b.End] share an instant.
func (b Booking) Overlaps(start, end time.Time) bool {
	return !start.After(b.End) && !b.Start.After(end)
}

type Comment struct {
	ID       int64     `gorm:"primaryKey"`
	Text     string    `gorm:"size:2000;not null"`
	ItemID   int64     `gorm:"not null;index"`
	AuthorID int64     `gorm:"not null;index"`
	Created  time.Time `gorm:"not null"`

	Item   *Item `gorm:"foreignKey:ItemID"`
	Author *User `gorm:"foreignKey:AuthorID"`
}

func (Comment) TableName() string { return "comments" }

type ItemRequest struct {
	ID          int64     `gorm:"primaryKey"`
	Description string    `gorm:"size:1000;not null"`
	RequesterID int64     `gorm:"not null;index"`
	Created     time.Time `gorm:"not null"`

	Requester *User `gorm:"foreignKey:RequesterID"`
	Items     []Item `gorm:"foreignKey:RequestID"`
}

func (ItemRequest) TableName() string { return "requests" }

// All lists the entities in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &ItemRequest{}, &Item{}, &Booking{}, &Comment{}}
}

// BookingState selects a subset of bookings when listing.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
	StateCanceled BookingState = "CANCELED"
)

var bookingStates = []BookingState{
	StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected, StateCanceled,
}

// ParseBookingState is case-insensitive; an empty string means ALL.
func ParseBookingState(s string) (BookingState, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StateAll, true
	}
	for _, st := range bookingStates {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
