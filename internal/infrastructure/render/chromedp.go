package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const defaultChromeTimeout = 30 * time.Second

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance (optional).
	// If empty, chromedp launches a new browser instance.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromedpRenderer renders HTML or URLs to PDF using the Chrome DevTools
// Protocol. One exec allocator is shared; each Render gets its own
// browser context bounded by a timeout.
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new chromedp-based PDF renderer
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromedpRenderer{
		config: config,
		logger: logger.Named("render"),
	}
	r.initAllocator()
	return r, nil
}

// initAllocator initializes the shared Chrome allocator
func (r *ChromedpRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render converts HTML content or a URL to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidInput, "render request is nil", nil)
	}
	hasHTML := strings.TrimSpace(req.HTML) != ""
	hasURL := strings.TrimSpace(req.URL) != ""
	if hasHTML == hasURL {
		return nil, NewRenderError(ErrCodeInvalidInput, "exactly one of HTML or URL must be provided", nil)
	}
	if err := req.Options.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeInvalidInput, err.Error(), err)
	}

	startTime := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Tie the browser context lifetime to the request timeout
	browserCtx, timeoutCancel := context.WithTimeout(browserCtx, timeout)
	defer timeoutCancel()

	tasks := chromedp.Tasks{}

	if req.Cookie != nil {
		tasks = append(tasks, setCookieAction(req.Cookie))
	}

	if hasURL {
		tasks = append(tasks,
			chromedp.Navigate(req.URL),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
	} else {
		tasks = append(tasks,
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				frameTree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return err
				}
				return page.SetDocumentContent(frameTree.Frame.ID, req.HTML).Do(ctx)
			}),
		)
	}

	var pdfData []byte
	tasks = append(tasks,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetEmulatedMedia().WithMedia("print").Do(ctx)
		}),
		printToPDFAction(req, &pdfData),
	)

	if err := chromedp.Run(browserCtx, tasks); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}

		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeEmptyOutput, "generated PDF is empty", nil)
	}

	renderDuration := time.Since(startTime)
	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Bool("from_url", hasURL),
		zap.Duration("duration", renderDuration),
	)

	return &Result{
		PDFData:        pdfData,
		RenderDuration: renderDuration,
	}, nil
}

// setCookieAction injects a session cookie into the browser context
func setCookieAction(cookie *Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return network.SetCookie(cookie.Name, cookie.Value).
			WithDomain(cookie.Domain).
			WithPath("/").
			Do(ctx)
	})
}

// printToPDFAction runs Page.printToPDF with the request's page options
func printToPDFAction(req *Request, out *[]byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		width, height := req.Options.Format.Dimensions()
		marginTop, err := req.Options.Margins.Top.Inches()
		if err != nil {
			return err
		}
		marginBottom, err := req.Options.Margins.Bottom.Inches()
		if err != nil {
			return err
		}
		marginLeft, err := req.Options.Margins.Left.Inches()
		if err != nil {
			return err
		}
		marginRight, err := req.Options.Margins.Right.Inches()
		if err != nil {
			return err
		}

		data, _, err := page.PrintToPDF().
			WithPrintBackground(req.Options.PrintBackground).
			WithPaperWidth(width).
			WithPaperHeight(height).
			WithMarginTop(marginTop).
			WithMarginBottom(marginBottom).
			WithMarginLeft(marginLeft).
			WithMarginRight(marginRight).
			WithScale(req.Options.Scale).
			WithLandscape(req.Options.Landscape).
			Do(ctx)
		if err != nil {
			return err
		}
		*out = data
		return nil
	})
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// Ensure ChromedpRenderer implements Renderer
var _ Renderer = (*ChromedpRenderer)(nil)
