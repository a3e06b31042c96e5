package pagefetch

import (
	"context"

	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/retry"
)

// Fetcher applies the mode-selection policy: an explicit ModeRendered
// request always renders; ModeHTTP always stays on HTTP; ModeAuto fetches
// via HTTP first and escalates to a render pass only if ShouldRender flags
// the body as JS-driven.
type Fetcher struct {
	http   *HTTPFetcher
	render *RenderFetcher
}

func NewFetcher(http *HTTPFetcher, render *RenderFetcher) *Fetcher {
	return &Fetcher{http: http, render: render}
}

func (f *Fetcher) Fetch(ctx context.Context, param FetchParam, retryParam retry.RetryParam) (FetchResult, failure.ClassifiedError) {
	if param.mode == ModeRendered {
		return f.fetchRendered(ctx, param)
	}

	httpResult, err := f.http.Fetch(ctx, param, retryParam)
	if err != nil {
		return httpResult, err
	}

	if param.mode == ModeHTTP {
		return httpResult, nil
	}

	if ShouldRender(httpResult.body) {
		rendered, rerr := f.fetchRendered(ctx, param)
		if rerr != nil {
			// rendering is best-effort augmentation; fall back to the HTTP result
			return httpResult, nil
		}
		return rendered, nil
	}

	return httpResult, nil
}

func (f *Fetcher) fetchRendered(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	if f.render == nil {
		return FetchResult{}, &FetchError{Message: "render fetcher not configured", Retryable: false, Cause: ErrCauseRenderFailure}
	}
	return f.render.Fetch(ctx, param)
}
