package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"shareit/pkg/apperr"
	"shareit/pkg/circuitbreaker"
	"shareit/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// forwardedHeaders are the only request headers the core sees.
var forwardedHeaders = []string{headerUserID, "Content-Type", middleware.HeaderRequestID}

type upstreamError struct {
	status int
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.status)
}

// forward relays the request to the core unchanged and copies the core's response back.
// Transport failures and 5xx answers count against the breaker.
func forward(c *gin.Context) {
	body, err := requestBody(c)
	if err != nil {
		respondError(c, apperr.InvalidRequest("failed to read request body: %v", err))
		return
	}

	url := serverURL + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		url += "?" + c.Request.URL.RawQuery
	}

	var (
		status      int
		contentType string
		data        []byte
	)
	err = breaker.Execute(func() error {
		request, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		for _, h := range forwardedHeaders {
			if v := c.Request.Header.Get(h); v != "" {
				request.Header.Set(h, v)
			}
		}
		response, err := httpClient.Do(request)
		if err != nil {
			return err
		}
		defer response.Body.Close()
		data, err = io.ReadAll(response.Body)
		if err != nil {
			return err
		}
		status = response.StatusCode
		contentType = response.Header.Get("Content-Type")
		if status >= http.StatusInternalServerError {
			return &upstreamError{status: status}
		}
		return nil
	})

	var upErr *upstreamError
	switch {
	case err == nil || errors.As(err, &upErr):
		if contentType == "" {
			contentType = "application/json"
		}
		c.Data(status, contentType, data)
	case errors.Is(err, circuitbreaker.ErrOpen):
		slog.Warn("core unavailable, circuit open", "req_id", middleware.GetRequestID(c), "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, apperr.Body{
			Error:       "Service unavailable",
			Description: "core service is unavailable, try again later",
		})
	default:
		slog.Error("failed to reach core", "req_id", middleware.GetRequestID(c), "err", err)
		respondError(c, apperr.Internal(err))
	}
}

// requestBody prefers the copy cached by validateBody; the live body may already be drained.
func requestBody(c *gin.Context) ([]byte, error) {
	if cached, ok := c.Get(gin.BodyBytesKey); ok {
		if b, ok := cached.([]byte); ok {
			return b, nil
		}
	}
	if c.Request.Body == nil {
		return nil, nil
	}
	return io.ReadAll(c.Request.Body)
}
