package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/models"
	"orbitaledge/internal/service"
)

type OrderRequest struct {
	CatalogID string `json:"catalogId" binding:"required,min=10"`
}

type OrderQuery struct {
	ImageID   string `form:"imageId"`
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Format    string `form:"format"`
}

// Filter converts the validated query into a store filter.
func (q OrderQuery) Filter() models.OrderFilter {
	filter := models.OrderFilter{ImageID: q.ImageID}
	if t, err := time.Parse(time.RFC3339, q.StartDate); err == nil {
		filter.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, q.EndDate); err == nil {
		filter.EndDate = &t
	}
	return filter
}

type OrderHandler struct {
	service service.OrderService
	errorResponder
}

func NewOrderHandler(service service.OrderService, debug bool) *OrderHandler {
	return &OrderHandler{service: service, errorResponder: errorResponder{debug: debug}}
}

// CreateOrder godoc
// @Summary Order a catalog entry
// @Accept json
// @Success 201 {object} models.Order
// @Failure 400,404,500
// @Router /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respond(c, apperror.Validation("Validation failed", bindingIssues(err)...))
		return
	}

	order, err := h.service.Create(c.Request.Context(), req.CatalogID)
	if err != nil {
		h.respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	orders, err := h.service.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ExportOrders renders the order listing as csv (default) or xlsx.
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	format, err := service.ParseExportFormat(q.Format)
	if err != nil {
		h.respond(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), q.Filter(), format, &buf); err != nil {
		h.respond(c, err)
		return
	}

	filename := fmt.Sprintf("orders_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (h *OrderHandler) bindQuery(c *gin.Context) (OrderQuery, bool) {
	var q OrderQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respond(c, apperror.Validation("Invalid query parameters", bindingIssues(err)...))
		return q, false
	}
	return q, true
}
