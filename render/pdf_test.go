package render

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"listing-map/utils"
)

func TestFindChromeBinaryHonoursEnv(t *testing.T) {
	t.Setenv("CHROME_BIN", "/custom/chrome")
	if got := findChromeBinary(); got != "/custom/chrome" {
		t.Errorf("findChromeBinary() = %q; want /custom/chrome", got)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	if os.Getenv("LISTING_MAP_BROWSER_TESTS") == "" {
		t.Skip("set LISTING_MAP_BROWSER_TESTS=1 to run against a local browser")
	}
	t.Setenv("CHROME_BIN", "")
	if findChromeBinary() == "" {
		t.Skip("no Chrome/Chromium binary available")
	}

	r := NewPDFRenderer("", 1, utils.NewNopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pdf, err := r.Render(ctx, []byte("<html><body><h1>Selected Properties Report</h1></body></html>"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Errorf("output does not look like a PDF: %q", pdf[:min(len(pdf), 8)])
	}
}
