package pagefetch

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
)

/*
Responsibilities

- Load a URL in headless Chrome
- Block heavy subresources (images, fonts) so rendering stays light
- Wait for DOMContentLoaded and a short network-idle window
- Read back the post-render DOM as HTML

Grounded in the pack's Fetch-domain resource-type interception pattern:
block by network.ResourceType, continue everything else.
*/

// RenderFetcher renders a URL with a shared headless browser allocator.
type RenderFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewRenderFetcher starts a headless Chrome allocator. Callers must call
// Close when the crawl finishes.
func NewRenderFetcher() *RenderFetcher {
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), chromedp.DefaultExecAllocatorOptions[:]...)
	return &RenderFetcher{allocCtx: allocCtx, allocCancel: cancel}
}

func (r *RenderFetcher) Close() {
	r.allocCancel()
}

// Fetch navigates to param.fetchUrl, blocking image/font subresources, and
// returns the rendered DOM as HTML.
func (r *RenderFetcher) Fetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	start := time.Now()

	timeout := param.timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	runCtx, runCancel := context.WithTimeout(tabCtx, timeout)
	defer runCancel()

	if err := chromedp.Run(runCtx, network.Enable(), fetch.Enable().WithPatterns([]*fetch.RequestPattern{
		{URLPattern: "*"},
	})); err != nil {
		return FetchResult{}, &FetchError{Message: "failed to enable network interception: " + err.Error(), Retryable: true, Cause: ErrCauseRenderFailure}
	}

	listenCtx, listenCancel := context.WithCancel(runCtx)
	defer listenCancel()

	chromedp.ListenTarget(listenCtx, func(ev any) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		switch e.ResourceType {
		case network.ResourceTypeImage, network.ResourceTypeFont:
			go func() {
				if err := fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(listenCtx); err != nil {
					log.Debug().Err(err).Msg("pagefetch: failed to block resource")
				}
			}()
		default:
			go func() {
				if err := fetch.ContinueRequest(e.RequestID).Do(listenCtx); err != nil {
					log.Debug().Err(err).Msg("pagefetch: failed to continue resource")
				}
			}()
		}
	})

	var statusCode int64
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(param.fetchUrl.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			statusCode = 200
			return nil
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return FetchResult{}, &FetchError{Message: "render timed out", Retryable: true, Cause: ErrCauseTimeout}
		}
		return FetchResult{}, &FetchError{Message: "render failed: " + err.Error(), Retryable: true, Cause: ErrCauseRenderFailure}
	}

	return FetchResult{
		url:        param.fetchUrl,
		finalURL:   param.fetchUrl,
		body:       []byte(html),
		statusCode: int(statusCode),
		headers:    map[string]string{"Content-Type": "text/html"},
		elapsed:    time.Since(start),
		fetchedAt:  time.Now(),
		modeUsed:   ModeRendered,
	}, nil
}
