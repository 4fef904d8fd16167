package handler

import (
	"net/http"

	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.GET("/restaurants/:id/products", h.ListProducts)
	router.POST("/restaurants/:id/products", authn, middleware.RequireRestaurant(), h.CreateProduct)

	products := router.Group("/products")
	{
		products.GET("/:id", h.GetProduct)
		products.PATCH("/:id", authn, middleware.RequireRestaurant(), h.UpdateProduct)
		products.DELETE("/:id", authn, middleware.RequireRestaurant(), h.DeleteProduct)
		products.PATCH("/:id/availability", authn, middleware.RequireRestaurant(), h.UpdateAvailability)
	}
}

// ListProducts returns the live products of a restaurant
// @Summary      List restaurant products
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Restaurant ID"
// @Success      200  {object}  response.Response{data=[]model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/restaurants/{id}/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	products, err := h.productService.ListProductsByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// CreateProduct adds a product with its sizes and categories
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Restaurant ID"
// @Param        payload  body      service.CreateProductRequest  true  "Product payload"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/v1/restaurants/{id}/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), principal(c), restaurantID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// GetProduct returns one live product with sizes, images and categories
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  response.Response{data=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateProduct partially updates a product
// @Summary      Update product
// @Description  sizes and category_ids replace the whole set when present; [] clears
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/v1/products/{id} [patch]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// UpdateAvailability toggles whether a product can be ordered
// @Summary      Set product availability
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Product ID"
// @Param        payload  body      service.AvailabilityRequest  true  "Availability"
// @Success      200      {object}  response.Response{data=model.Product}
// @Router       /api/v1/products/{id}/availability [patch]
func (h *ProductHandler) UpdateAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.productService.UpdateAvailability(c.Request.Context(), principal(c), id, *req.Available)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct soft-deletes a product
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  response.Response
// @Router       /api/v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Product deleted successfully"}))
}
