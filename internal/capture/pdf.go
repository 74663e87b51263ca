package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	appLog "confprint/internal/log"
	"confprint/internal/web"
)

// DefaultTimeoutSec bounds a pagination when no timeout is configured.
const DefaultTimeoutSec = 60

// A4 paper size in inches, the unit PrintToPDF expects.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
)

// PDFOptions defines parameters for a Chromium-based PDF print.
type PDFOptions struct {
	// URL to print, e.g. "http://127.0.0.1:43121/timetable".
	URL string

	// Timeout bounds the entire print operation. If zero,
	// DefaultTimeoutSec is used.
	Timeout time.Duration
}

// PrintPDF launches a headless Chromium instance via chromedp, navigates to
// opts.URL, waits for the page to signal that rendering is complete and
// prints it to PDF. CSS @page rules of the stylesheet win over the A4
// default.
//
// Rendering-complete condition:
//   - The page body exposes data-ready="true".
func PrintPDF(parentCtx context.Context, opts PDFOptions) ([]byte, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("capture: URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Duration(DefaultTimeoutSec) * time.Second
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var pdf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				WithPaperWidth(a4WidthIn).
				WithPaperHeight(a4HeightIn).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	}

	if err := chromedp.Run(ctx, tasks); err != nil {
		return nil, fmt.Errorf("capture: chromedp run failed: %w", err)
	}
	return pdf, nil
}

// Paginator prints HTML pages to PDF through a loopback web server, so the
// browser resolves the stylesheet exactly like a real page.
type Paginator struct {
	Timeout time.Duration
}

// Paginate implements timetable.Paginator.
func (p Paginator) Paginate(ctx context.Context, html, css []byte) ([]byte, error) {
	pageURL, stop, err := servePage(html, css)
	if err != nil {
		return nil, err
	}
	defer stop()

	appLog.Debug("printing timetable", "url", pageURL)
	return PrintPDF(ctx, PDFOptions{URL: pageURL, Timeout: p.Timeout})
}

// servePage exposes html and css on a loopback server and returns the page
// URL. The stylesheet resolves relative to it as /style.css.
func servePage(html, css []byte) (string, func(), error) {
	srv := web.NewServer(nil)
	srv.SetSnapshot(web.Snapshot{HTML: html, CSS: css})

	base, stop, err := srv.StartLoopback()
	if err != nil {
		return "", nil, fmt.Errorf("capture: loopback server: %w", err)
	}
	return base + "/timetable", stop, nil
}
