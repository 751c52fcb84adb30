package middleware

import (
	"net/http"
	"strings"

	"busticket/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"

	// SessionCookie holds the signed session token set after Google login.
	SessionCookie = "session"
)

// SessionParser verifies a session token.
type SessionParser interface {
	Parse(token string) (domain.Principal, error)
}

// Session resolves the caller from the session cookie or a Bearer header.
// Requests without a valid session pass through anonymously.
func Session(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if v, err := c.Cookie(SessionCookie); err == nil {
				token = v
			}
		}
		if token != "" {
			if p, err := parser.Parse(token); err == nil {
				c.Set(principalKey, p)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// GetPrincipal returns the authenticated caller when present.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "You must be logged in.")
			return
		}
		c.Next()
	}
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message":    message,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
