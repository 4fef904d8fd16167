package handler

import (
	"net/http"

	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/pagination"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

type RestaurantHandler struct {
	restaurantService service.RestaurantService
}

func NewRestaurantHandler(restaurantService service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

func (h *RestaurantHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	restaurants := router.Group("/restaurants")
	{
		restaurants.GET("", h.ListRestaurants)
		restaurants.GET("/:id", h.GetRestaurant)
		restaurants.POST("", authn, middleware.RequireAdmin(), h.CreateRestaurant)
		restaurants.PATCH("/:id", authn, middleware.RequireAdmin(), h.UpdateRestaurant)
		restaurants.DELETE("/:id", authn, middleware.RequireAdmin(), h.DeleteRestaurant)
	}
	router.GET("/public/:country/:state/:city/:identifier", h.GetPublicProfile)
}

// ListRestaurants returns live restaurants ordered by id
// @Summary      List restaurants
// @Tags         restaurants
// @Produce      json
// @Param        skip   query     int  false  "Rows to skip (default 0)"
// @Param        limit  query     int  false  "Page size (default 100, max 500)"
// @Success      200    {object}  response.Response{data=response.Page}
// @Router       /api/v1/restaurants [get]
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	window := pagination.Parse(c)

	restaurants, total, err := h.restaurantService.ListRestaurants(c.Request.Context(), window.Skip, window.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPage(http.StatusOK, restaurants, window.Skip, window.Limit, total))
}

// GetRestaurant returns one live restaurant
// @Summary      Get restaurant
// @Tags         restaurants
// @Produce      json
// @Param        id   path      int  true  "Restaurant ID"
// @Success      200  {object}  response.Response{data=service.RestaurantResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/restaurants/{id} [get]
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	restaurant, err := h.restaurantService.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, restaurant))
}

// CreateRestaurant registers a restaurant account
// @Summary      Create restaurant
// @Tags         restaurants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRestaurantRequest  true  "Restaurant payload"
// @Success      201      {object}  response.Response{data=service.RestaurantResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/v1/restaurants [post]
func (h *RestaurantHandler) CreateRestaurant(c *gin.Context) {
	var req service.CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	restaurant, err := h.restaurantService.CreateRestaurant(c.Request.Context(), principal(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, restaurant))
}

// UpdateRestaurant partially updates a restaurant
// @Summary      Update restaurant
// @Tags         restaurants
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                              true  "Restaurant ID"
// @Param        payload  body      service.UpdateRestaurantRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=service.RestaurantResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/v1/restaurants/{id} [patch]
func (h *RestaurantHandler) UpdateRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	restaurant, err := h.restaurantService.UpdateRestaurant(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, restaurant))
}

// DeleteRestaurant soft-deletes a restaurant and its products
// @Summary      Delete restaurant
// @Tags         restaurants
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Restaurant ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/v1/restaurants/{id} [delete]
func (h *RestaurantHandler) DeleteRestaurant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.restaurantService.DeleteRestaurant(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Restaurant deleted successfully"}))
}

// GetPublicProfile resolves a restaurant by its public address
// @Summary      Public restaurant page
// @Description  identifier is the part of the restaurant's email before the @
// @Tags         public
// @Produce      json
// @Param        country     path      string  true  "Country code"
// @Param        state       path      string  true  "State code"
// @Param        city        path      string  true  "City code"
// @Param        identifier  path      string  true  "Restaurant identifier"
// @Success      200         {object}  response.Response{data=service.PublicProfileResponse}
// @Failure      404         {object}  response.Response
// @Router       /api/v1/public/{country}/{state}/{city}/{identifier} [get]
func (h *RestaurantHandler) GetPublicProfile(c *gin.Context) {
	profile, err := h.restaurantService.GetPublicProfile(c.Request.Context(),
		c.Param("country"), c.Param("state"), c.Param("city"), c.Param("identifier"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}
