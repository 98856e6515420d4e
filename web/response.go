// ABOUTME: JSON response envelope for the HTTP API
// ABOUTME: Every endpoint answers with success, message, and either data or error
package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/dealdesk/db"
	"go.uber.org/zap"
)

// Response is the standard API response format.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func failure(c *gin.Context, status int, message string, err error) {
	c.Abort()

	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, message string, err error) {
	failure(c, http.StatusBadRequest, message, err)
}

// storeError maps a store failure to a status: a missing record is 404, a
// request cancelled during simulated latency is 503, anything else is 500.
func (s *Server) storeError(c *gin.Context, message string, err error) {
	switch {
	case db.IsNotFound(err):
		failure(c, http.StatusNotFound, message, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		failure(c, http.StatusServiceUnavailable, message, err)
	default:
		s.logger.Error(message, zap.Error(err), zapPath(c))
		failure(c, http.StatusInternalServerError, message, err)
	}
}
