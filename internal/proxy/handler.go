// Package proxy is the same-origin relay between the browser UI and the
// catalog backend. Requests are forwarded verbatim and replies are returned
// with the backend's status, body and content type.
package proxy

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orbitaledge/internal/clients"
	"orbitaledge/internal/middleware"
)

type Handler struct {
	backend clients.BackendClient
	log     *zap.Logger
}

func NewHandler(backend clients.BackendClient, log *zap.Logger) *Handler {
	return &Handler{backend: backend, log: log}
}

// Search relays an AOI search. It also serves the legacy POST /api/images
// route.
func (h *Handler) Search(c *gin.Context) {
	h.relay(c, http.MethodPost, "/api/images/search")
}

func (h *Handler) GetImage(c *gin.Context) {
	h.relay(c, http.MethodGet, "/api/images/"+url.PathEscape(c.Param("catalogId")))
}

func (h *Handler) ListOrders(c *gin.Context) {
	h.relay(c, http.MethodGet, "/api/orders")
}

func (h *Handler) CreateOrder(c *gin.Context) {
	h.relay(c, http.MethodPost, "/api/orders")
}

func (h *Handler) relay(c *gin.Context, method, path string) {
	var body = c.Request.Body
	if method == http.MethodGet {
		body = nil
	}

	resp, err := h.backend.Forward(
		c.Request.Context(),
		method,
		path,
		c.Request.URL.RawQuery,
		c.GetHeader("Content-Type"),
		body,
	)
	if err != nil {
		h.log.Error("backend unreachable",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	if !resp.OK() {
		h.log.Warn("backend returned non-OK status",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(resp.Body, 512)),
		)
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// NewRouter wires the relay routes.
func NewRouter(h *Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log, false))

	api := r.Group("/api")
	{
		api.POST("/images/search", h.Search)
		api.POST("/images", h.Search)
		api.GET("/images/:catalogId", h.GetImage)
		api.GET("/orders", h.ListOrders)
		api.POST("/orders", h.CreateOrder)
	}

	return r
}
