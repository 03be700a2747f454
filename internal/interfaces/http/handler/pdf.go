package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pdfapp "github.com/pdfgen/backend/internal/application/pdf"
)

// PDFHandler handles PDF generation and serving endpoints
type PDFHandler struct {
	BaseHandler
	service *pdfapp.Service
}

// NewPDFHandler creates a new PDFHandler
func NewPDFHandler(service *pdfapp.Service) *PDFHandler {
	return &PDFHandler{service: service}
}

// RegisterRoutes registers the PDF routes
func (h *PDFHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-pdf", h.Generate)
	rg.GET("/pdfs/:filename", h.Serve)
}

// Generate renders the posted HTML or URL to a PDF and returns its link
func (h *PDFHandler) Generate(c *gin.Context) {
	var req pdfapp.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body.")
		return
	}

	rc := pdfapp.RequestContext{
		Scheme: requestScheme(c),
		Host:   c.Request.Host,
	}
	if token, err := c.Cookie("token"); err == nil {
		rc.Token = token
	}

	resp, err := h.service.Generate(c.Request.Context(), req, rc)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Serve streams a previously generated PDF. The open happens before
// any headers are written, so a concurrent sweep cannot truncate the
// response mid-transfer.
func (h *PDFHandler) Serve(c *gin.Context) {
	reader, info, err := h.service.Open(c.Param("filename"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size, "application/pdf", reader, nil)
}

// requestScheme derives the inbound scheme, honoring a proxy header
func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
