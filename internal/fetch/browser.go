package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// MinContentLength is the shortest article text accepted from a plain HTTP
// fetch. Shorter pages are usually rendered by script.
const MinContentLength = 500

// DefaultBrowserTimeout bounds a single headless render.
const DefaultBrowserTimeout = 30 * time.Second

// hydrationDelay gives news sites time to fill in lazy article bodies.
const hydrationDelay = 1500 * time.Millisecond

// ShouldUseBrowser reports whether extracted text is too short to be the
// article itself.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

func browserOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(DefaultUserAgent),
		chromedp.WindowSize(1280, 2000),
	)
}

// WithBrowser loads url in headless Chrome, scrolls once so lazy article
// sections load, and returns the rendered document. Chrome or Chromium must
// be installed.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultBrowserTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserOptions()...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)
	defer cancelTimeout()

	start := time.Now()
	var (
		html     string
		scrolled bool
	)
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); true`, &scrolled),
		chromedp.Sleep(hydrationDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		return "", &Error{URL: url, Message: "browser rendering failed", Cause: err}
	}

	logger.Debug("rendered article in browser",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Duration("elapsed", time.Since(start)))
	if strings.TrimSpace(html) == "" {
		return "", &Error{URL: url, Message: fmt.Sprintf("browser returned an empty document after %s", time.Since(start).Round(time.Millisecond))}
	}
	return html, nil
}
