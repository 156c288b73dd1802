package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pdfRenderTimeout bounds the whole headless-Chrome session, including
// the CDN fetch for Chart.js.
const pdfRenderTimeout = 60 * time.Second

// PDF renders the report in headless Chrome and returns the printed
// bytes. The page-break CSS in the template yields one chart per page.
// Requires a Chrome/Chromium binary on the host.
func PDF(ctx context.Context, d Data) ([]byte, error) {
	dir, err := os.MkdirTemp("", "tuxboard-report-*")
	if err != nil {
		return nil, fmt.Errorf("report: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "report.html")
	var buf bytes.Buffer
	if err := HTML(&buf, d); err != nil {
		return nil, err
	}
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("report: write temp html: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, pdfRenderTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		// Give Chart.js time to draw onto the canvases.
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("report: print to pdf: %w", err)
	}
	return pdf, nil
}
