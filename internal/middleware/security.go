package middleware

import (
	"net/http"

	"github.com/ChristianJLC/web/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the usual browser hardening headers. HTTPS redirect and
// HSTS are only enabled in production.
func SecureHeaders(production bool) gin.HandlerFunc {
	sm := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:         stsSeconds(production),
		IsDevelopment:      !production,
	})
	return func(c *gin.Context) {
		if err := sm.Process(c.Writer, c.Request); err != nil {
			// the HTTPS redirect is reported as an error after it has been written
			if c.Writer.Written() {
				c.Abort()
				return
			}
			log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("secure headers blocked request")
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("Solicitud rechazada"))
			return
		}
		c.Next()
	}
}

func stsSeconds(production bool) int64 {
	if production {
		return 31536000
	}
	return 0
}
