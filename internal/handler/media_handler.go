package handler

import (
	"mime/multipart"
	"net/http"

	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaService service.MediaService
}

func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func (h *MediaHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	router.POST("/products/:id/images", authn, middleware.RequireRestaurant(), h.AttachImages)
	router.DELETE("/products/images/:image_id", authn, middleware.RequireRestaurant(), h.DeleteImage)
	router.POST("/restaurants/:id/logo", authn, middleware.RequireAdmin(), h.UploadLogo)
}

// openAll opens every header; the returned func closes whatever was opened.
func openAll(headers []*multipart.FileHeader) ([]service.FileUpload, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]service.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		uploads = append(uploads, service.FileUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

// AttachImages uploads images for a product
// @Summary      Upload product images
// @Tags         media
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      int   true  "Product ID"
// @Param        files  formData  file  true  "Image files (repeat the field for several)"
// @Success      201    {object}  response.Response{data=[]model.ProductImage}
// @Failure      400    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /api/v1/products/{id}/images [post]
func (h *MediaHandler) AttachImages(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondBindError(c, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "At least one file is required in field 'files'"))
		return
	}

	uploads, closeAll, err := openAll(headers)
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer closeAll()

	images, err := h.mediaService.AttachImages(c.Request.Context(), principal(c), productID, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, images))
}

// DeleteImage removes one product image
// @Summary      Delete product image
// @Tags         media
// @Security     BearerAuth
// @Produce      json
// @Param        image_id  path      int  true  "Image ID"
// @Success      200       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /api/v1/products/images/{image_id} [delete]
func (h *MediaHandler) DeleteImage(c *gin.Context) {
	imageID, ok := pathID(c, "image_id")
	if !ok {
		return
	}

	if err := h.mediaService.DeleteImage(c.Request.Context(), principal(c), imageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Image deleted successfully"}))
}

// UploadLogo replaces a restaurant's logo
// @Summary      Upload restaurant logo
// @Tags         media
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      int   true  "Restaurant ID"
// @Param        file  formData  file  true  "Logo image"
// @Success      200   {object}  response.Response{data=service.RestaurantResponse}
// @Router       /api/v1/restaurants/{id}/logo [post]
func (h *MediaHandler) UploadLogo(c *gin.Context) {
	restaurantID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, err)
		return
	}
	uploads, closeAll, err := openAll([]*multipart.FileHeader{fh})
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer closeAll()

	restaurant, err := h.mediaService.UploadRestaurantLogo(c.Request.Context(), principal(c), restaurantID, uploads[0])
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, restaurant))
}
