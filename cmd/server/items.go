package main

import (
	"net/http"

	"shareit/pkg/service"

	"github.com/gin-gonic/gin"
)

func createItem(c *gin.Context) {
	ownerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	var in service.ItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := svc.AddItem(c.Request.Context(), ownerID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func updateItem(c *gin.Context) {
	ownerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var in service.ItemInput
	if !bindJSON(c, &in) {
		return
	}
	item, err := svc.UpdateItem(c.Request.Context(), ownerID, itemID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func getItem(c *gin.Context) {
	if _, ok := userIDHeader(c); !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	item, err := svc.GetItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func listOwnItems(c *gin.Context) {
	ownerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	items, err := svc.ListItemsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func searchItems(c *gin.Context) {
	if _, ok := userIDHeader(c); !ok {
		return
	}
	items, err := svc.SearchItems(c.Request.Context(), c.Query("text"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func deleteItem(c *gin.Context) {
	ownerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	if err := svc.RemoveItem(c.Request.Context(), ownerID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func deleteOwnItems(c *gin.Context) {
	ownerID, ok := userIDHeader(c)
	if !ok {
		return
	}
	if err := svc.RemoveItemsByOwner(c.Request.Context(), ownerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func createComment(c *gin.Context) {
	authorID, ok := userIDHeader(c)
	if !ok {
		return
	}
	itemID, ok := pathID(c)
	if !ok {
		return
	}
	var in service.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	comment, err := svc.CreateComment(c.Request.Context(), itemID, authorID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
