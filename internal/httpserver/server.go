package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akinloluwami/openpanel/internal/auth"
	"github.com/akinloluwami/openpanel/internal/handlers"
	"github.com/akinloluwami/openpanel/internal/session"
	"github.com/akinloluwami/openpanel/internal/store"
)

// NewRouter wires public endpoints and the authenticated ingestion API.
// Public: /health, /ready
// Authenticated: /event
func NewRouter(clientKeys map[string]string, st *store.PostgresStore, tracker *session.Tracker, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Auth group resolves project context from the client key header.
	authGroup := r.Group("/")
	authGroup.Use(auth.ClientKeyMiddleware(clientKeys))

	handlers.RegisterEventRoutes(authGroup, tracker, log)

	return r
}
