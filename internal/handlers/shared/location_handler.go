package handlers

import (
	"bringalong/internal/services"
	"bringalong/internal/utils"
	"bringalong/pkg/logger"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	geoService services.GeoService
	logger     *logger.Logger
}

func NewLocationHandler(geoService services.GeoService, log *logger.Logger) *LocationHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &LocationHandler{
		geoService: geoService,
		logger:     log,
	}
}

// Detect geolocates the caller, or the address given in ?ip=
func (h *LocationHandler) Detect(c *gin.Context) {
	ip := c.DefaultQuery("ip", c.ClientIP())

	location, err := h.geoService.Detect(c.Request.Context(), ip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "Location detected successfully", location)
}
