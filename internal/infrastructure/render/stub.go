package render

import (
	"context"
	"sync"
	"time"
)

// StubRenderer is a Renderer that returns canned bytes or an injected
// failure without launching a browser. It records the requests it saw
// so tests can assert on parameter plumbing.
type StubRenderer struct {
	// Output is returned on success; defaults to a minimal PDF header
	Output []byte
	// Err, when set, is returned instead of Output
	Err error
	// Delay simulates a slow engine
	Delay time.Duration

	mu       sync.Mutex
	requests []Request
}

// stubPDF is a minimal document carrying the PDF file signature
var stubPDF = []byte("%PDF-1.7\n%stub\n%%EOF\n")

// NewStubRenderer creates a stub returning a minimal valid PDF
func NewStubRenderer() *StubRenderer {
	return &StubRenderer{}
}

// Render returns the canned output or the injected failure
func (s *StubRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidInput, "render request is nil", nil)
	}

	s.mu.Lock()
	s.requests = append(s.requests, *req)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", ctx.Err())
		case <-time.After(s.Delay):
		}
	}

	if s.Err != nil {
		return nil, s.Err
	}

	out := s.Output
	if out == nil {
		out = stubPDF
	}
	return &Result{PDFData: out, RenderDuration: s.Delay}, nil
}

// Close implements Renderer
func (s *StubRenderer) Close() error {
	return nil
}

// Requests returns a copy of the requests seen so far
func (s *StubRenderer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Ensure StubRenderer implements Renderer
var _ Renderer = (*StubRenderer)(nil)
