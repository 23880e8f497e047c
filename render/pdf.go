// Package render prints HTML documents to PDF with headless Chrome.
package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"listing-map/utils"
)

// PDFRenderer drives a headless browser to print documents.
type PDFRenderer struct {
	chromeBin string
	timeout   time.Duration
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// NewPDFRenderer creates a renderer. An empty chromeBin means auto-detect.
func NewPDFRenderer(chromeBin string, maxRetries int, logger *utils.Logger) *PDFRenderer {
	return &PDFRenderer{
		chromeBin: chromeBin,
		timeout:   60 * time.Second,
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Render loads html into a blank page and prints it to PDF.
func (r *PDFRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	chromeBin := r.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	r.logger.Debug("[render] Using browser binary: %q", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	var pdf []byte
	err := r.retry.Do(ctx, "print-pdf", func(context.Context) error {
		browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		defer cancel()

		browserCtx, cancelTimeout := context.WithTimeout(browserCtx, r.timeout)
		defer cancelTimeout()

		return chromedp.Run(browserCtx,
			chromedp.Navigate("about:blank"),
			chromedp.ActionFunc(func(ctx context.Context) error {
				tree, err := page.GetFrameTree().Do(ctx)
				if err != nil {
					return fmt.Errorf("frame tree: %w", err)
				}
				return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
			}),
			chromedp.ActionFunc(func(ctx context.Context) error {
				buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
				if err != nil {
					return fmt.Errorf("print to pdf: %w", err)
				}
				pdf = buf
				return nil
			}),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	r.logger.Info("[render] Printed %d byte PDF", len(pdf))
	return pdf, nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
