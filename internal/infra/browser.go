package infra

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"quizsolver/pkg/utils"
)

// BrowserRenderer owns one headless Chrome process for the lifetime of the
// app. Every Render call opens its own browser context and closes it again,
// so concurrent tasks never share page state.
type BrowserRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	settle      time.Duration
}

func NewBrowserRenderer(timeout, settle time.Duration) *BrowserRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	log.Println("Headless browser allocator initialized")

	return &BrowserRenderer{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		timeout:     timeout,
		settle:      settle,
	}
}

// Render navigates to url in a fresh browser context and returns the page
// HTML after scripts have had a chance to run. The per-fetch timeout is
// clamped to the caller's deadline when that is nearer.
func (b *BrowserRenderer) Render(ctx context.Context, url string) (string, error) {
	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = utils.ClampToDeadline(timeout, deadline)
	}
	if timeout <= 0 {
		return "", utils.ErrDeadlineExceeded
	}

	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, timeout)
	defer cancelRun()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrRenderFailed, err)
	}
	return html, nil
}

// Close shuts the shared Chrome process down.
func (b *BrowserRenderer) Close() {
	b.allocCancel()
	log.Println("Headless browser allocator closed")
}
