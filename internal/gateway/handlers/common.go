package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"contractbill-system/internal/services/apperr"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

// handleServiceError maps the service error taxonomy to HTTP status codes.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case apperr.IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case apperr.IsInvalidState(err):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal server error"))
	}
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return 0, false
	}
	return id, true
}

// actorName returns the authenticated username set by the JWT middleware.
func actorName(c *gin.Context) string {
	if username, ok := c.Get("username"); ok {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return "system"
}
