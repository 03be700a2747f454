package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdfgen/backend/internal/interfaces/http/dto"
)

// SystemHandler handles service health endpoints
type SystemHandler struct {
	BaseHandler
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler() *SystemHandler {
	return &SystemHandler{}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.Health)
}

// Health reports that the service is up. It has no side effects.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Message: "PDF Generator Service is running.",
	})
}
