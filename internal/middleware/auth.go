package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/ChristianJLC/web/internal/apierror"
	"github.com/ChristianJLC/web/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ClaimsKey     = "claims"
	SessionCookie = "session"
)

// TokenValidator is the part of the auth service the gate depends on.
type TokenValidator interface {
	ValidarToken(ctx context.Context, raw, tipo string) (*service.Claims, error)
}

// SessionGate admits requests carrying a valid access token, either as
// "Authorization: Bearer" or in the session cookie. Browser navigations that
// fail are redirected to the login page with a callbackUrl; API calls get a
// 401 carrying the same login URL.
func SessionGate(v TokenValidator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenDe(c)
		if raw == "" {
			rechazar(c, loginPath, "Autenticacion requerida")
			return
		}
		claims, err := v.ValidarToken(c.Request.Context(), raw, service.TokenAcceso)
		if err != nil {
			rechazar(c, loginPath, err.Error())
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// LoginURL builds the login location that returns the user to r afterwards.
func LoginURL(loginPath string, r *http.Request) string {
	return loginPath + "?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	v, _ := c.Get(ClaimsKey)
	claims, _ := v.(*service.Claims)
	return claims
}

func tokenDe(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func rechazar(c *gin.Context, loginPath, msg string) {
	destino := LoginURL(loginPath, c.Request)
	if c.Request.Method == http.MethodGet && strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, destino)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.NewAuth(msg, destino))
}
