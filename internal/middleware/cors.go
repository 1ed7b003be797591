package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var devOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS reflects allowed origins. The local dev servers are always allowed;
// extra origins come from configuration.
func CORS(extra []string) gin.HandlerFunc {
	allowedOrigins := make(map[string]bool)
	for _, o := range Origins(extra) {
		if o != "" {
			allowedOrigins[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept, Origin, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods",
			"GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Origins lists every origin CORS accepts, for reuse by the websocket hub.
func Origins(extra []string) []string {
	out := make([]string, 0, len(devOrigins)+len(extra))
	out = append(out, devOrigins...)
	return append(out, extra...)
}
