package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AllowedHeaders covers the headers sent by the CI upload clients.
var AllowedHeaders = []string{
	"Authorization",
	"X-Client-Info",
	"Apikey",
	"Content-Type",
	"Idempotency-Key",
	"X-Request-Id",
}

// CORS allows the given origins. "*" (or an empty list) allows any origin
// without credentials. Preflights answer 200 with an empty body.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              AllowedHeaders,
		ExposeHeaders:             []string{"X-Request-Id", "X-Trace-Id", "Idempotent-Replayed"},
		OptionsResponseStatusCode: http.StatusOK,
	}

	origins := make([]string, 0, len(allowedOrigins))
	wildcard := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			wildcard = true
			break
		}
		origins = append(origins, o)
	}
	if wildcard || len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// Preflight answers OPTIONS requests that reach a route, i.e. those without
// an Origin header that the CORS middleware passes through.
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}
