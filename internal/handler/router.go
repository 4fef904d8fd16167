package handler

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler of the catalog API
type Handlers struct {
	Auth        *AuthHandler
	Restaurants *RestaurantHandler
	Categories  *CategoryHandler
	Products    *ProductHandler
	Media       *MediaHandler
	Audit       *AuditHandler
}

// RegisterAPI mounts /auth at the root and everything else under /api/v1.
// authn is the middleware that turns a bearer token into a principal.
func RegisterAPI(engine *gin.Engine, authn gin.HandlerFunc, h Handlers) {
	h.Auth.RegisterRoutes(engine.Group(""), authn)

	v1 := engine.Group("/api/v1")
	h.Restaurants.RegisterRoutes(v1, authn)
	h.Categories.RegisterRoutes(v1, authn)
	h.Products.RegisterRoutes(v1, authn)
	h.Media.RegisterRoutes(v1, authn)
	h.Audit.RegisterRoutes(v1, authn)
}
