package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akinloluwami/openpanel/internal/auth"
	"github.com/akinloluwami/openpanel/internal/classify"
	"github.com/akinloluwami/openpanel/internal/models"
	"github.com/akinloluwami/openpanel/internal/session"
)

// clientIP reads the forwarded client address. The service sits behind a
// trusted proxy; a request with no forwarding headers has no network
// identity, which is exactly what the server-event path keys on.
func clientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.SplitN(xff, ",", 2)[0])
	}
	return strings.TrimSpace(c.GetHeader("X-Real-IP"))
}

// RegisterEventRoutes registers the ingestion-path endpoint.
//
// POST /event
// - Requires openpanel-client-id (project context)
// - Browser events: 202 with the resolved deviceId as the body, so SDKs can
//   cache it and skip future fingerprinting
// - Server and bot events: 200 with empty body
// - Collaborator failure (queue, geo, salts): 500; the SDK drops or
//   re-buffers the event rather than retrying in a tight loop
func RegisterEventRoutes(r gin.IRoutes, tracker *session.Tracker, log zerolog.Logger) {
	r.POST("/event", func(c *gin.Context) {
		projectID := auth.ProjectID(c)
		if projectID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req models.TrackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}

		rc := models.RequestContext{
			IP:        clientIP(c),
			Origin:    c.GetHeader("Origin"),
			UserAgent: c.GetHeader("User-Agent"),
		}

		res, err := tracker.Track(c.Request.Context(), projectID, req, rc)
		if err != nil {
			log.Error().Err(err).Str("project", projectID).Str("event", req.Name).Msg("track failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "event ingestion failed"})
			return
		}

		if res.Kind == classify.KindBrowser {
			c.String(http.StatusAccepted, res.DeviceID)
			return
		}
		c.String(http.StatusOK, "")
	})
}
