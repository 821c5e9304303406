package main

import (
	"context"
	"net/http"
	"strconv"

	"shareit/pkg/apperr"
	"shareit/pkg/service"

	"github.com/gin-gonic/gin"
)

func createBooking(c *gin.Context) {
	bookerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	var in service.BookingInput
	if !bindJSON(c, &in) {
		return
	}
	booking, err := svc.CreateBooking(c.Request.Context(), bookerID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func approveBooking(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		respondError(c, apperr.InvalidRequest("query parameter approved must be true or false, got %q", c.Query("approved")))
		return
	}
	booking, err := svc.ApproveBooking(c.Request.Context(), bookingID, userID, approved)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func cancelBooking(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := svc.CancelBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func getBooking(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c)
	if !ok {
		return
	}
	booking, err := svc.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func listBookings(c *gin.Context) {
	listBookingsWith(c, svc.ListBookings)
}

func listOwnerBookings(c *gin.Context) {
	listBookingsWith(c, svc.ListOwnerBookings)
}

type bookingLister func(ctx context.Context, userID int64, state string, page service.Page) ([]service.BookingView, error)

func listBookingsWith(c *gin.Context, list bookingLister) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	from, ok := optionalInt(c, "from")
	if !ok {
		return
	}
	size, ok := optionalInt(c, "size")
	if !ok {
		return
	}
	page, err := service.OffsetPage(from, size)
	if err != nil {
		respondError(c, err)
		return
	}
	bookings, err := list(c.Request.Context(), userID, c.DefaultQuery("state", "ALL"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
