package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	intconfig "busticket/internal/config"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "bus ticket backend running"})
}

func DBCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := intconfig.EnsureDB(ctx); err != nil {
		RespondError(c, http.StatusInternalServerError, "db_unavailable", "database not connected", err)
		return
	}

	var count int
	if err := intconfig.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips").Scan(&count); err != nil {
		RespondError(c, http.StatusInternalServerError, "db_error", "database query failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "trips_in_db": count})
}

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for /api/routes.
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		RespondError(c, http.StatusServiceUnavailable, "unavailable", "router not ready", nil)
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{"method": rt.Method, "path": rt.Path})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
