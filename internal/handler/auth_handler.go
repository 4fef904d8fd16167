package handler

import (
	"net/http"
	"time"

	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService   service.AuthService
	tokenTTL      time.Duration
	secureCookies bool
}

// NewAuthHandler wires the login endpoints. secureCookies marks the token
// cookie Secure/SameSite=None for cross-origin dashboards served over HTTPS.
func NewAuthHandler(authService service.AuthService, tokenTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, secureCookies: secureCookies}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	group := router.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/logout", h.Logout)
		group.GET("/me", authn, h.Me)
	}
}

// Login exchanges credentials for an access token
// @Summary      Log in
// @Description  Admins log in with their username, restaurants with their email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.authService.Authenticate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.AccessToken, h.tokenTTL, h.secureCookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Logout clears the token cookie
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// Me describes the caller
// @Summary      Current principal
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p := principal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.authService.Me(p)))
}
