package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAdmin allows only callers whose Google ID is in adminGoogleIDs.
// Anonymous callers get 401, known non-admins 403.
func RequireAdmin(adminGoogleIDs []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(adminGoogleIDs))
	for _, id := range adminGoogleIDs {
		if id = strings.TrimSpace(id); id != "" {
			allowed[id] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "You must be logged in.")
			return
		}
		if _, ok := allowed[p.GoogleID]; !ok {
			abortJSON(c, http.StatusForbidden, "forbidden", "You are not authorized.")
			return
		}
		c.Next()
	}
}
