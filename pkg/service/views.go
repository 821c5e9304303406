package service

import "shareit/pkg/models"

type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookingShort is the booking summary embedded in item views.
type BookingShort struct {
	ID       int64                `json:"id"`
	ItemID   int64                `json:"itemId"`
	BookerID int64                `json:"bookerId"`
	Start    models.LocalDateTime `json:"start"`
	End      models.LocalDateTime `json:"end"`
	Status   models.BookingStatus `json:"status"`
}

type BookingView struct {
	ID       int64                `json:"id"`
	Start    models.LocalDateTime `json:"start"`
	End      models.LocalDateTime `json:"end"`
	Status   models.BookingStatus `json:"status"`
	ItemID   int64                `json:"itemId"`
	BookerID int64                `json:"bookerId"`
	Item     Ref                  `json:"item"`
	Booker   Ref                  `json:"booker"`
}

type CommentView struct {
	ID         int64                `json:"id"`
	Text       string               `json:"text"`
	ItemID     int64                `json:"itemId"`
	AuthorName string               `json:"authorName"`
	Created    models.LocalDateTime `json:"created"`
}

type ItemView struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	OwnerID     int64         `json:"ownerId"`
	RequestID   *int64        `json:"requestId,omitempty"`
	LastBooking *BookingShort `json:"lastBooking,omitempty"`
	NextBooking *BookingShort `json:"nextBooking,omitempty"`
	Comments    []CommentView `json:"comments"`
}

type OfferedItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"ownerId"`
}

type RequestView struct {
	ID          int64                `json:"id"`
	Description string               `json:"description"`
	RequesterID int64                `json:"requesterId"`
	Created     models.LocalDateTime `json:"created"`
	Items       []OfferedItem        `json:"items"`
}

func userView(u *models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func bookingShort(b *models.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:       b.ID,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Start:    models.NewLocalDateTime(b.Start),
		End:      models.NewLocalDateTime(b.End),
		Status:   b.Status,
	}
}

// bookingView expects Item and Booker to be loaded.
func bookingView(b *models.Booking) BookingView {
	v := BookingView{
		ID:       b.ID,
		Start:    models.NewLocalDateTime(b.Start),
		End:      models.NewLocalDateTime(b.End),
		Status:   b.Status,
		ItemID:   b.ItemID,
		BookerID: b.BookerID,
		Item:     Ref{ID: b.ItemID},
		Booker:   Ref{ID: b.BookerID},
	}
	if b.Item != nil {
		v.Item.Name = b.Item.Name
	}
	if b.Booker != nil {
		v.Booker.Name = b.Booker.Name
	}
	return v
}

func commentView(c *models.Comment) CommentView {
	v := CommentView{
		ID:      c.ID,
		Text:    c.Text,
		ItemID:  c.ItemID,
		Created: models.NewLocalDateTime(c.Created),
	}
	if c.Author != nil {
		v.AuthorName = c.Author.Name
	}
	return v
}

func requestView(r *models.ItemRequest) RequestView {
	v := RequestView{
		ID:          r.ID,
		Description: r.Description,
		RequesterID: r.RequesterID,
		Created:     models.NewLocalDateTime(r.Created),
		Items:       make([]OfferedItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		v.Items = append(v.Items, OfferedItem{ID: it.ID, Name: it.Name, OwnerID: it.OwnerID})
	}
	return v
}
