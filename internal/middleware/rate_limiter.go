package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ChristianJLC/web/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return RateLimiter(20, time.Minute, "Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter adapts an httprate sliding-window limiter keyed by client IP to gin.
func RateLimiter(limit int, window time.Duration, msg string) gin.HandlerFunc {
	limiter := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(apierror.New(msg))
		}),
	)
	return func(c *gin.Context) {
		permitido := false
		limiter(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			permitido = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)
		if !permitido {
			c.Abort()
			return
		}
		c.Next()
	}
}
