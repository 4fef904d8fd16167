package middleware

import (
	"net/http"
	"strings"
	"time"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"
	cookieName   = "access_token"
)

// TokenDecoder turns a bearer token into the principal it was issued for
type TokenDecoder interface {
	Decode(token string) (auth.Principal, error)
}

// SetTokenCookie stores the access token as an HttpOnly cookie.
// Secure cookies use SameSite=None so a dashboard on another origin can send them.
func SetTokenCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearTokenCookie removes the access token cookie
func ClearTokenCookie(c *gin.Context, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetSameSite(sameSite)
	c.SetCookie(cookieName, "", -1, "/", "", secure, true)
}

// extractToken reads the access_token cookie first, then the Authorization header.
func extractToken(c *gin.Context) (string, string) {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token, ""
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// Authenticate requires a valid token and stores the caller's principal on the context
func Authenticate(decoder TokenDecoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := extractToken(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}

		principal, err := decoder.Decode(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by Authenticate
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// RequireAdmin lets only admin principals through. Use after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return requireRole(func(p auth.Principal) error {
		_, err := auth.RequireAdmin(p)
		return err
	})
}

// RequireRestaurant lets only restaurant principals through. Use after Authenticate.
func RequireRestaurant() gin.HandlerFunc {
	return requireRole(func(p auth.Principal) error {
		_, err := auth.RequireRestaurant(p)
		return err
	})
}

func requireRole(check func(auth.Principal) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}
		if err := check(p); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}
		c.Next()
	}
}
