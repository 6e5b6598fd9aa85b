package handler

import (
	"errors"
	"net/http"

	"github.com/ChristianJLC/web/internal/apierror"
	"github.com/ChristianJLC/web/internal/dto"
	"github.com/ChristianJLC/web/internal/middleware"
	"github.com/ChristianJLC/web/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AuthHandler struct {
	svc          service.AuthService
	secureCookie bool
}

// NewAuthHandler marks the session cookie Secure when secureCookie is set (production).
func NewAuthHandler(svc service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookie: secureCookie}
}

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.responderAuth(c, err)
		return
	}
	h.setSession(c, resp.AccessToken, resp.ExpiresIn)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.responderAuth(c, err)
		return
	}
	h.setSession(c, resp.AccessToken, resp.ExpiresIn)
	c.JSON(http.StatusOK, resp)
}

// Logout revokes the current access token and clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		// the token still expires on its own; logging out must not fail for the user
		log.Warn().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("no se pudo revocar el token")
	}
	h.setSession(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
		return
	}
	resp, err := h.svc.Me(c.Request.Context(), claims.UserID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) responderAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCredenciales),
		errors.Is(err, service.ErrTokenInvalido),
		errors.Is(err, service.ErrTokenRevocado):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		responderError(c, err)
	}
}
