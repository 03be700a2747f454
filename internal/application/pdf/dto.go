package pdf

import "time"

// GenerateRequest represents a request to generate a PDF from HTML
// content or a URL. Exactly one of the two must be provided.
type GenerateRequest struct {
	HTML    string           `json:"html"`
	URL     string           `json:"url" binding:"omitempty,url"`
	Options *OptionsOverride `json:"options"`
}

// OptionsOverride carries per-request page-format overrides. Absent
// fields fall back to the configured defaults.
type OptionsOverride struct {
	Format          *string  `json:"format"`
	PrintBackground *bool    `json:"print_background"`
	Scale           *float64 `json:"scale"`
	Landscape       *bool    `json:"landscape"`
	MarginTop       *string  `json:"margin_top" binding:"omitempty,csslength"`
	MarginBottom    *string  `json:"margin_bottom" binding:"omitempty,csslength"`
	MarginLeft      *string  `json:"margin_left" binding:"omitempty,csslength"`
	MarginRight     *string  `json:"margin_right" binding:"omitempty,csslength"`
}

// RequestContext carries per-request facts the transport layer knows
// and the service needs: the session token to forward into the browser
// and the inbound host for URL and cookie-domain derivation.
type RequestContext struct {
	// Token is the session cookie value; empty when the request had none
	Token string
	// Scheme is the inbound request scheme (http or https)
	Scheme string
	// Host is the inbound Host header, possibly including a port
	Host string
}

// GenerateResponse represents the result of PDF generation
type GenerateResponse struct {
	PDFURL string `json:"pdf_url"`
}

// FileInfo describes a stored PDF for serving
type FileInfo struct {
	ID        string
	Size      int64
	CreatedAt time.Time
}
