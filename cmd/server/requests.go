package main

import (
	"net/http"

	"shareit/pkg/service"

	"github.com/gin-gonic/gin"
)

func createRequest(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	var in service.RequestInput
	if !bindJSON(c, &in) {
		return
	}
	request, err := svc.CreateRequest(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func listOwnRequests(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	requests, err := svc.ListOwnRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func listOtherRequests(c *gin.Context) {
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
	page, err := service.NumberedPage(from, size)
	if err != nil {
		respondError(c, err)
		return
	}
	requests, err := svc.ListOtherRequests(c.Request.Context(), userID, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func getRequest(c *gin.Context) {
	userID, ok := userIDHeader(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c)
	if !ok {
		return
	}
	request, err := svc.GetRequest(c.Request.Context(), requestID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
