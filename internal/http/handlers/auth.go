package handlers

import (
	"net/http"

	"busticket/internal/domain"
	"busticket/internal/http/middleware"
	"busticket/internal/repositories"
	"busticket/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves the Google login flow and session endpoints.
type AuthHandler struct {
	Sessions     services.SessionService
	Google       services.GoogleAuthService
	SecureCookie bool
}

func (h AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.SecureCookie, true)
}

// GET /auth/google
func (h AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	h.setCookie(c, oauthStateCookie, state, 600)
	c.Redirect(http.StatusFound, h.Google.AuthCodeURL(state))
}

// GET /auth/google/callback
func (h AuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || c.Query("state") != expected {
		RespondDomainError(c, domain.UnauthorizedError{Msg: "invalid oauth state"})
		return
	}
	h.setCookie(c, oauthStateCookie, "", -1)

	google := h.Google
	google.RequestID = middleware.GetRequestID(c)
	user, err := google.Login(c.Request.Context(), c.Query("code"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	token, err := h.Sessions.Issue(user)
	if err != nil {
		RespondDomainError(c, domain.StorageError{Op: "issue session", Err: err})
		return
	}
	h.setCookie(c, middleware.SessionCookie, token, int(h.Sessions.TTL.Seconds()))
	c.Redirect(http.StatusFound, "/bookings.html")
}

// GET /api/current_user returns the logged-in user or null.
func (h AuthHandler) CurrentUser(c *gin.Context) {
	id := currentUserID(c)
	if id == 0 {
		c.JSON(http.StatusOK, nil)
		return
	}
	user, err := repositories.UserRepo{}.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusOK, nil)
			return
		}
		RespondDomainError(c, domain.StorageError{Op: "get user", Err: err})
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/logout
func (h AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, middleware.SessionCookie, "", -1)
	c.Redirect(http.StatusFound, "/")
}

// GET /api/admin/check
func AdminCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Success, you are an admin."})
}
