package handlers

import (
	"net/http"
	"strconv"

	"busticket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// RespondError sends the standard error payload; err, when set, is included as detail.
func RespondError(c *gin.Context, status int, code, message string, err error) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "validation_error", "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "validation_error", "invalid payload", err)
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		RespondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// currentUserID returns the caller's user id, or 0 when anonymous.
func currentUserID(c *gin.Context) int64 {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return 0
	}
	return int64(p.UserID)
}
