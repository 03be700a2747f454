// Package render wraps the external headless-browser engine behind a
// narrow interface so the HTTP contract and retention logic can be
// tested against a stub.
package render

import (
	"context"
	"time"

	"github.com/pdfgen/backend/internal/domain/pdf"
)

// Request contains the parameters for rendering one document to PDF.
// Exactly one of HTML or URL must be set.
type Request struct {
	// HTML content to render
	HTML string
	// URL to navigate to and render
	URL string
	// Options are the page-format options for this render
	Options pdf.Options
	// Cookie is an optional session cookie injected into the browser
	// context before navigation
	Cookie *Cookie
	// Timeout overrides the renderer's default timeout
	Timeout time.Duration
}

// Cookie is a browser cookie forwarded from the inbound request
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Result contains the output from PDF rendering
type Result struct {
	// PDFData is the raw PDF file content
	PDFData []byte
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// Renderer defines the interface to the rendering engine
type Renderer interface {
	// Render converts HTML content or a URL to a PDF document
	Render(ctx context.Context, req *Request) (*Result, error)
	// Close releases any resources held by the renderer
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeEmptyOutput   = "EMPTY_OUTPUT"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
