package render

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/calebmorton/tradedocs-backend/pkg/config"
	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
	"github.com/calebmorton/tradedocs-backend/pkg/metrics"
)

// PDFRenderer prints the HTML artifact to PDF via headless Chromium. The
// configured timeout bounds the whole print; hitting it surfaces as a
// render-timeout failure instead of hanging the request.
type PDFRenderer struct {
	html *HTMLRenderer
	cfg  config.RenderConfig
}

// NewPDFRenderer wraps the HTML engine with a Chromium print step.
func NewPDFRenderer(html *HTMLRenderer, cfg config.RenderConfig) *PDFRenderer {
	return &PDFRenderer{html: html, cfg: cfg}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(ctx context.Context, view View) (Artifact, error) {
	start := time.Now()

	htmlArtifact, err := r.html.Render(ctx, view)
	if err != nil {
		return Artifact{}, err
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.cfg.ChromiumPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.cfg.ChromiumPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, timeout)
	defer cancelTimeout()

	var pdfBuf []byte
	dataURL := "data:text/html," + url.PathEscape(string(htmlArtifact.Data))
	err = chromedp.Run(runCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, perr := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if perr == nil {
				pdfBuf = buf
			}
			return perr
		}),
	)
	if err != nil {
		metrics.RenderFailures.WithLabelValues("pdf").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return Artifact{}, pkgerrors.Wrap(pkgerrors.CodeRenderTimeout, err, "pdf print exceeded timeout")
		}
		return Artifact{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pdf print failed")
	}

	metrics.RenderDuration.WithLabelValues("pdf", view.Class.String()).Observe(time.Since(start).Seconds())
	return Artifact{ContentType: "application/pdf", Data: pdfBuf}, nil
}
