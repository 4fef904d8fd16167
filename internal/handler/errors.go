package handler

import (
	"net/http"
	"strconv"

	"restaurant-catalog/internal/auth"
	"restaurant-catalog/internal/logger"
	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/pkg/apperror"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err with the status its kind maps to. Internal errors
// are logged and replaced by a generic message.
func respondError(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("Request failed", zap.Error(err))
		msg = "Internal server error"
	}
	_ = c.Error(err)
	c.JSON(status, response.Error(status, msg))
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// pathID parses a positive numeric path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// principal returns the caller set by middleware.Authenticate, or nil.
func principal(c *gin.Context) auth.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}
