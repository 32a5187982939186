package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orbitaledge/internal/middleware"
	"orbitaledge/internal/service"
)

type Services struct {
	Images service.ImageService
	Orders service.OrderService
	Health service.HealthService
}

type RouterConfig struct {
	Debug       bool
	FrontendURL string
}

func NewRouter(services Services, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	registerTagNames()

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log, cfg.Debug))
	r.Use(cors.New(corsConfig(cfg.FrontendURL)))

	health := NewHealthHandler(services.Health)
	images := NewImageHandler(services.Images, cfg.Debug)
	orders := NewOrderHandler(services.Orders, cfg.Debug)

	r.GET("/", health.Index)
	r.GET("/health", health.Health)

	api := r.Group("/api")
	{
		api.GET("/images", images.ListImages)
		api.POST("/images/search", images.SearchImages)
		api.GET("/images/:catalogId", images.GetImage)

		api.POST("/orders", orders.CreateOrder)
		api.GET("/orders", orders.ListOrders)
		api.GET("/orders/export", orders.ExportOrders)
	}

	r.NoRoute(notFound)

	return r
}

func corsConfig(frontendURL string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if frontendURL == "" || frontendURL == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = []string{frontendURL}
	cfg.AllowCredentials = true
	return cfg
}
