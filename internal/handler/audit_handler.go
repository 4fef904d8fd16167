package handler

import (
	"net/http"

	"restaurant-catalog/internal/middleware"
	"restaurant-catalog/internal/service"
	"restaurant-catalog/pkg/pagination"
	"restaurant-catalog/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultAuditLimit = 20

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc) {
	group := router.Group("/audit-logs")
	group.Use(authn, middleware.RequireAdmin())
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs returns the catalog change trail, newest first
// @Summary      Get audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/v1/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.ParsePage(c, defaultAuditLimit)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), principal(c), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
