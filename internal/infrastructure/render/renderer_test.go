package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfgen/backend/internal/domain/pdf"
)

func validOptions() pdf.Options {
	return pdf.Options{
		Format:  pdf.FormatA4,
		Scale:   0.6,
		Margins: pdf.Margins{Top: "1cm", Bottom: "1cm", Left: "1cm", Right: "1cm"},
	}
}

func TestRenderError(t *testing.T) {
	cause := errors.New("browser crashed")
	err := NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", cause)

	assert.Equal(t, "chromedp execution failed: browser crashed", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := NewRenderError(ErrCodeEmptyOutput, "generated PDF is empty", nil)
	assert.Equal(t, "generated PDF is empty", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestChromedpRenderer_InputValidation(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()

	_, err = r.Render(ctx, nil)
	assertRenderCode(t, err, ErrCodeInvalidInput)

	// neither HTML nor URL
	_, err = r.Render(ctx, &Request{Options: validOptions()})
	assertRenderCode(t, err, ErrCodeInvalidInput)

	// both HTML and URL
	_, err = r.Render(ctx, &Request{HTML: "<h1>x</h1>", URL: "https://example.com", Options: validOptions()})
	assertRenderCode(t, err, ErrCodeInvalidInput)

	// invalid options never reach the browser
	opts := validOptions()
	opts.Scale = 9
	_, err = r.Render(ctx, &Request{HTML: "<h1>x</h1>", Options: opts})
	assertRenderCode(t, err, ErrCodeInvalidInput)
}

func assertRenderCode(t *testing.T, err error, code string) {
	t.Helper()
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, code, renderErr.Code)
}

func TestStubRenderer_Render(t *testing.T) {
	stub := NewStubRenderer()

	res, err := stub.Render(context.Background(), &Request{HTML: "<h1>Hello</h1>", Options: validOptions()})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(res.PDFData[:4]))

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "<h1>Hello</h1>", reqs[0].HTML)
}

func TestStubRenderer_InjectedFailure(t *testing.T) {
	stub := NewStubRenderer()
	stub.Err = NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", nil)

	_, err := stub.Render(context.Background(), &Request{URL: "https://example.com", Options: validOptions()})
	assertRenderCode(t, err, ErrCodeRenderFailed)
}

func TestStubRenderer_RespectsContext(t *testing.T) {
	stub := NewStubRenderer()
	stub.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := stub.Render(ctx, &Request{HTML: "<p>slow</p>", Options: validOptions()})
	assertRenderCode(t, err, ErrCodeRenderTimeout)
}
