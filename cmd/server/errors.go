package main

import (
	"strconv"

	"shareit/pkg/apperr"

	"github.com/gin-gonic/gin"
)

const headerUserID = "X-Sharer-User-Id"

func respondError(c *gin.Context, err error) {
	status, body := apperr.BodyOf(err)
	c.AbortWithStatusJSON(status, body)
}

// userIDHeader reads the caller id; it writes the 400 itself and reports false when the header is unusable.
func userIDHeader(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(headerUserID)
	if raw == "" {
		respondError(c, apperr.InvalidRequest("header %s is required", headerUserID))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.InvalidRequest("header %s must be a positive integer, got %q", headerUserID, raw))
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperr.InvalidRequest("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

// optionalInt returns nil for an absent query parameter.
func optionalInt(c *gin.Context, key string) (*int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, apperr.InvalidRequest("query parameter %s must be an integer, got %q", key, raw))
		return nil, false
	}
	return &v, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.InvalidRequest("malformed request body: %v", err))
		return false
	}
	return true
}
