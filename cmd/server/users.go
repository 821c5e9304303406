package main

import (
	"net/http"

	"shareit/pkg/service"

	"github.com/gin-gonic/gin"
)

func createUser(c *gin.Context) {
	var in service.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := svc.AddUser(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func listUsers(c *gin.Context) {
	users, err := svc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := svc.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in service.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := svc.UpdateUser(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := svc.RemoveUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func deleteAllUsers(c *gin.Context) {
	if err := svc.RemoveAllUsers(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
