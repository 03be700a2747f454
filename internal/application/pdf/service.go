package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdfgen/backend/internal/domain/pdf"
	"github.com/pdfgen/backend/internal/domain/shared"
	"github.com/pdfgen/backend/internal/infrastructure/render"
	"github.com/pdfgen/backend/internal/infrastructure/storage"
)

// sessionCookieName is the inbound cookie forwarded into the browser
// context so authenticated pages render with the caller's session.
const sessionCookieName = "token"

// ServiceConfig holds the service-level settings resolved at startup
type ServiceConfig struct {
	// Defaults are the page-format options used when a request carries
	// no overrides
	Defaults pdf.Options
	// BaseURL is the public base for generated links; empty derives the
	// base from the inbound request
	BaseURL string
	// CookieDomain for the forwarded session cookie; empty derives the
	// domain from the inbound request host
	CookieDomain string
	// RenderTimeout bounds a single render
	RenderTimeout time.Duration
}

// Service handles PDF generation and retrieval
type Service struct {
	renderer render.Renderer
	store    *storage.FileStore
	config   ServiceConfig
	logger   *zap.Logger
}

// NewService creates a new Service
func NewService(renderer render.Renderer, store *storage.FileStore, config ServiceConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		renderer: renderer,
		store:    store,
		config:   config,
		logger:   logger.Named("pdf"),
	}
}

// Generate renders the request's HTML or URL to a PDF, stores it and
// returns the public link. Validation failures never reach the
// rendering engine.
func (s *Service) Generate(ctx context.Context, req GenerateRequest, rc RequestContext) (*GenerateResponse, error) {
	hasHTML := strings.TrimSpace(req.HTML) != ""
	hasURL := strings.TrimSpace(req.URL) != ""
	if hasHTML == hasURL {
		return nil, shared.NewDomainError("INVALID_INPUT", "Provide exactly one of 'html' or 'url'.")
	}

	opts, err := s.resolveOptions(req.Options)
	if err != nil {
		return nil, err
	}

	renderReq := &render.Request{
		HTML:    req.HTML,
		URL:     req.URL,
		Options: opts,
		Timeout: s.config.RenderTimeout,
	}
	if rc.Token != "" {
		renderReq.Cookie = &render.Cookie{
			Name:   sessionCookieName,
			Value:  rc.Token,
			Domain: s.cookieDomain(rc),
		}
	}

	result, err := s.renderer.Render(ctx, renderReq)
	if err != nil {
		return nil, mapRenderError(err)
	}

	file, err := s.store.Put(result.PDFData)
	if err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	pdfURL := s.publicBaseURL(rc) + "/pdfs/" + file.Filename()

	s.logger.Info("PDF generated",
		zap.String("id", file.ID.String()),
		zap.Int64("size", file.Size),
		zap.Bool("from_url", hasURL),
		zap.Duration("render_duration", result.RenderDuration))

	return &GenerateResponse{PDFURL: pdfURL}, nil
}

// Open returns a reader over a stored PDF by its public filename.
// Unknown, malformed and already-swept names all surface as NOT_FOUND.
func (s *Service) Open(filename string) (io.ReadCloser, FileInfo, error) {
	name, ok := strings.CutSuffix(filename, ".pdf")
	if !ok {
		return nil, FileInfo{}, shared.NewDomainError("NOT_FOUND", "PDF not found or expired.")
	}
	id, err := uuid.Parse(name)
	if err != nil {
		return nil, FileInfo{}, shared.NewDomainError("NOT_FOUND", "PDF not found or expired.")
	}

	reader, file, err := s.store.Open(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, FileInfo{}, shared.NewDomainError("NOT_FOUND", "PDF not found or expired.")
		}
		return nil, FileInfo{}, fmt.Errorf("failed to open PDF: %w", err)
	}

	return reader, FileInfo{
		ID:        file.ID.String(),
		Size:      file.Size,
		CreatedAt: file.CreatedAt,
	}, nil
}

// resolveOptions overlays the request's overrides onto the configured
// defaults and validates the result.
func (s *Service) resolveOptions(override *OptionsOverride) (pdf.Options, error) {
	opts := s.config.Defaults
	if override == nil {
		return opts, nil
	}

	if override.Format != nil {
		format, err := pdf.ParsePaperFormat(*override.Format)
		if err != nil {
			return pdf.Options{}, shared.NewDomainError("INVALID_INPUT", err.Error())
		}
		opts.Format = format
	}
	if override.PrintBackground != nil {
		opts.PrintBackground = *override.PrintBackground
	}
	if override.Scale != nil {
		opts.Scale = *override.Scale
	}
	if override.Landscape != nil {
		opts.Landscape = *override.Landscape
	}
	if override.MarginTop != nil {
		opts.Margins.Top = pdf.Length(*override.MarginTop)
	}
	if override.MarginBottom != nil {
		opts.Margins.Bottom = pdf.Length(*override.MarginBottom)
	}
	if override.MarginLeft != nil {
		opts.Margins.Left = pdf.Length(*override.MarginLeft)
	}
	if override.MarginRight != nil {
		opts.Margins.Right = pdf.Length(*override.MarginRight)
	}

	if err := opts.Validate(); err != nil {
		return pdf.Options{}, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return opts, nil
}

// publicBaseURL returns the base for generated links, preferring the
// configured value over the inbound request.
func (s *Service) publicBaseURL(rc RequestContext) string {
	if s.config.BaseURL != "" {
		return s.config.BaseURL
	}
	scheme := rc.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + rc.Host
}

// cookieDomain returns the domain for the forwarded session cookie
func (s *Service) cookieDomain(rc RequestContext) string {
	if s.config.CookieDomain != "" {
		return s.config.CookieDomain
	}
	return hostOnly(rc.Host)
}

// hostOnly strips a port from a host header value
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

// mapRenderError translates engine failures into domain errors the
// transport layer knows how to present.
func mapRenderError(err error) error {
	var renderErr *render.RenderError
	if !errors.As(err, &renderErr) {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	switch renderErr.Code {
	case render.ErrCodeInvalidInput:
		return shared.NewDomainError("INVALID_INPUT", renderErr.Message)
	case render.ErrCodeRenderTimeout:
		return shared.NewDomainError("RENDER_TIMEOUT", "PDF generation timed out.")
	default:
		return shared.NewDomainError("RENDER_FAILED", "PDF generation failed.")
	}
}
