package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"orbitaledge/internal/apperror"
	"orbitaledge/internal/geo"
	"orbitaledge/internal/query"
	"orbitaledge/internal/service"
)

const maxSearchBodyBytes = 1 << 20

type ImageHandler struct {
	service service.ImageService
	errorResponder
}

func NewImageHandler(service service.ImageService, debug bool) *ImageHandler {
	return &ImageHandler{service: service, errorResponder: errorResponder{debug: debug}}
}

// ListImages godoc
// @Summary List catalog entries
// @Param minResolution query number false "minimum resolution"
// @Param maxCloudCoverage query number false "maximum cloud coverage"
// @Param bbox query string false "minLon,minLat,maxLon,maxLat"
// @Router /api/images [get]
func (h *ImageHandler) ListImages(c *gin.Context) {
	filter, err := query.ParseImageFilter(c.Request.URL.Query())
	if err != nil {
		h.respond(c, err)
		return
	}

	images, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, images)
}

// SearchImages godoc
// @Summary Find catalog entries intersecting a Polygon or MultiPolygon
// @Accept json
// @Router /api/images/search [post]
func (h *ImageHandler) SearchImages(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxSearchBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		message := "failed to read body"
		if errors.As(err, &tooLarge) {
			message = "body exceeds 1 MiB"
		}
		h.respond(c, apperror.Validation(geo.InvalidGeoJSON, apperror.Issue{Path: "", Message: message}))
		return
	}

	images, err := h.service.Search(c.Request.Context(), body)
	if err != nil {
		h.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, images)
}

func (h *ImageHandler) GetImage(c *gin.Context) {
	image, err := h.service.Get(c.Request.Context(), c.Param("catalogId"))
	if err != nil {
		h.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, image)
}
