package api

import (
	stdhttp "net/http"
	"strings"

	intconfig "busticket/internal/config"
	h "busticket/internal/http/handlers"
	"busticket/internal/http/middleware"
	"busticket/internal/repositories"
	"busticket/internal/services"
	"busticket/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	sessions := services.SessionService{
		Secret: []byte(env.Auth.JWTSecret),
		TTL:    env.Auth.SessionTTL,
	}
	auth := h.AuthHandler{
		Sessions: sessions,
		Google: services.GoogleAuthService{
			OAuth:    services.NewGoogleOAuthConfig(env.Auth),
			UserRepo: repositories.UserRepo{},
		},
		SecureCookie: strings.HasPrefix(env.Auth.GoogleRedirectURL, "https://"),
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.AllowedOrigins()),
		middleware.Session(sessions),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	r.GET("/auth/google", auth.GoogleLogin)
	r.GET("/auth/google/callback", auth.GoogleCallback)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Session
		api.GET("/current_user", auth.CurrentUser)
		api.GET("/logout", auth.Logout)

		admin := middleware.RequireAdmin(env.Auth.AdminIDs())
		api.GET("/admin/check", admin, h.AdminCheck)

		// Trips
		trips := api.Group("/trips")
		trips.GET("/search", h.SearchTrips)
		trips.GET("/:id", h.GetTrip)
		trips.POST("", admin, h.CreateTrip)
		trips.DELETE("/:id", admin, h.DeleteTrip)

		// Bookings
		bookings := api.Group("/bookings", middleware.RequireAuth())
		bookings.GET("/my-bookings", h.MyBookings)
		bookings.POST("/book", h.BookSeats)
		bookings.GET("/:id/e-ticket", h.DownloadETicket)
	}

	h.SetRouter(r)
	return r
}
