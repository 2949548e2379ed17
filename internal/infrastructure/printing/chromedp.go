package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/billydoc/backend/internal/domain/printing"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	mmPerInch            = 25.4
)

// chromeFlags are added to chromedp's defaults for a local headless browser
var chromeFlags = []chromedp.ExecAllocatorOption{
	chromedp.Flag("headless", true),
	chromedp.Flag("disable-gpu", true),
	chromedp.Flag("disable-dev-shm-usage", true),
	chromedp.Flag("disable-extensions", true),
	chromedp.Flag("disable-background-networking", true),
	chromedp.Flag("disable-sync", true),
	// keeps Thai glyph spacing stable across hosts
	chromedp.Flag("font-render-hinting", "none"),
}

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools websocket of a running Chrome. Empty launches
	// a local headless browser on first render.
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root, e.g. in containers
	NoSandbox bool
	Scale     float64
	Logger    *zap.Logger
}

// ChromedpRenderer prints the HTML templates to PDF through Chrome. All
// renders share one browser; each opens its own tab.
type ChromedpRenderer struct {
	config *ChromedpConfig
	logger *zap.Logger

	once        sync.Once
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a chromedp renderer. The browser is not started
// until the first Render.
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	cfg := ChromedpConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = defaultChromeTimeout
	}
	if cfg.Scale <= 0 {
		cfg.Scale = defaultScale
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ChromedpRenderer{config: &cfg, logger: cfg.Logger.Named("chromedp")}, nil
}

func (r *ChromedpRenderer) allocator() context.Context {
	r.once.Do(func() {
		if r.config.RemoteURL != "" {
			r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
			return
		}
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromeFlags...)
		if r.config.NoSandbox {
			opts = append(opts, chromedp.NoSandbox)
		}
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	})
	return r.allocCtx
}

// Render prints req.HTML to PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}
	if err := validatePage(req.Page); err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.config.DefaultTimeout
	}
	start := time.Now()

	tabCtx, closeTab := chromedp.NewContext(r.allocator(),
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer closeTab()
	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	// the tab belongs to the allocator, not to ctx
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	content := wrapHTML(req.HTML, req.Title)
	params := r.printParams(req.Page)

	var pdf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, content).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
	default:
		r.logger.Error("chromedp rendering failed", zap.String("title", req.Title), zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed: "+err.Error(), err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdf,
		PageCount:      estimatePageCount(pdf),
		RenderDuration: time.Since(start),
	}
	r.logger.Debug("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return result, nil
}

// printParams maps the page setup to Chrome's print options, in inches.
// Chrome swaps width and height itself for landscape.
func (r *ChromedpRenderer) printParams(setup printing.PageSetup) *page.PrintToPDFParams {
	width, height := setup.PaperSize.Dimensions()
	margins := setup.Margins
	if margins.IsZero() {
		margins = printing.DefaultMargins()
	}
	return page.PrintToPDF().
		WithPaperWidth(mmToInches(float64(width))).
		WithPaperHeight(mmToInches(float64(height))).
		WithMarginTop(mmToInches(float64(margins.Top))).
		WithMarginRight(mmToInches(float64(margins.Right))).
		WithMarginBottom(mmToInches(float64(margins.Bottom))).
		WithMarginLeft(mmToInches(float64(margins.Left))).
		WithLandscape(setup.Orientation == printing.OrientationLandscape).
		WithScale(r.config.Scale).
		WithPrintBackground(true).
		WithPreferCSSPageSize(false)
}

// wrapHTML completes a fragment into a UTF-8 document. Full documents pass through.
func wrapHTML(body, title string) string {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return body
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if title != "" {
		b.WriteString("<title>" + html.EscapeString(title) + "</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}

// Name identifies the engine
func (r *ChromedpRenderer) Name() string {
	return "chromedp"
}

// Close shuts the browser down if it was started
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
