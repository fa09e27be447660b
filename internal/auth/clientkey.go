package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// projectCtxKey is the Gin context key used to store the resolved project ID.
const projectCtxKey = "project_id"

// ClientKeyMiddleware resolves the SDK client key to a project. The mapping
// would come from the projects table in a full deployment; here it is injected
// from configuration.
func ClientKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := strings.TrimSpace(c.GetHeader("openpanel-client-id"))
		projectID, ok := keys[clientKey]
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(projectCtxKey, projectID)
		c.Next()
	}
}

// ProjectID returns the resolved project ID from the request context.
func ProjectID(c *gin.Context) string {
	v, _ := c.Get(projectCtxKey)
	s, _ := v.(string)
	return s
}
