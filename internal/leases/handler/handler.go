package handler

import (
	"fmt"
	"net/http"
	"time"

	"lease_portal_backend/internal/leases/export"
	"lease_portal_backend/internal/leases/service"
	"lease_portal_backend/internal/leases/transport"
	"lease_portal_backend/platform/httpkit"
	"lease_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
	rg.GET("/export", h.Export)
}

func (h *Handler) Search(c *gin.Context) {
	var query transport.SearchLeasesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Search(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Export(c *gin.Context) {
	var query transport.SearchLeasesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leases, err := h.svc.Export(c.Request.Context(), query)
	if httpkit.HandleError(c, err) {
		return
	}

	workbook, err := export.WriteWorkbook(leases)
	if httpkit.HandleError(c, err) {
		return
	}

	filename := fmt.Sprintf("leases-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, workbook.Bytes())
}
