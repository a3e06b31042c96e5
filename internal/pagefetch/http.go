package pagefetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/retry"
)

/*
Responsibilities

- Perform HTTP GET requests following redirects
- Apply browser-like headers and a per-request timeout
- Record redirect hop count and final URL
- Classify transport and status failures

The HTTP fetcher never parses content; it only returns bytes and metadata.
*/

type HTTPFetcher struct {
	httpClient        *http.Client
	insecureSkipVerify bool
}

func NewHTTPFetcher(insecureSkipVerify bool) *HTTPFetcher {
	f := &HTTPFetcher{insecureSkipVerify: insecureSkipVerify}
	f.httpClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecureSkipVerify}, //nolint:gosec
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("%w: stopped after 10 redirects", errRedirectLoop)
			}
			return nil
		},
	}
	return f
}

var errRedirectLoop = errors.New("pagefetch: redirect loop")

// Fetch performs the HTTP-mode fetch: follow redirects,
// record the final URL, status, headers as-received, bytes, and elapsed
// time, retrying transient failures per retryParam.
func (f *HTTPFetcher) Fetch(ctx context.Context, param FetchParam, retryParam retry.RetryParam) (FetchResult, failure.ClassifiedError) {
	var lastFetchErr *FetchError
	task := func() (FetchResult, failure.ClassifiedError) {
		result, err := f.performFetch(ctx, param)
		if err != nil {
			errors.As(err, &lastFetchErr)
		}
		return result, err
	}

	res := retry.Retry(retryParam, task)
	if err := res.Err(); err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			// Exhausted retries surface as a RetryError; return the last
			// attempt's FetchError so its cause (and status) is kept.
			fetchErr = lastFetchErr
		}
		if fetchErr != nil {
			log.Debug().Str("url", param.fetchUrl.String()).Int("metadata_cause", int(mapFetchErrorToMetadataCause(fetchErr))).Err(err).Msg("pagefetch http fetch failed")
			return FetchResult{}, fetchErr
		}
		log.Debug().Str("url", param.fetchUrl.String()).Err(err).Msg("pagefetch http fetch failed")
		return FetchResult{}, err
	}
	return res.Value(), nil
}

func (f *HTTPFetcher) performFetch(ctx context.Context, param FetchParam) (FetchResult, failure.ClassifiedError) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, param.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, param.fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: false, Cause: ErrCauseNetworkFailure}
	}
	for k, v := range requestHeaders(param.userAgent) {
		req.Header.Set(k, v)
	}

	var redirectHops int
	client := *f.httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		redirectHops = len(via)
		if len(via) >= 10 {
			return fmt.Errorf("%w: stopped after 10 redirects", errRedirectLoop)
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, errRedirectLoop) {
			return FetchResult{}, &FetchError{Message: err.Error(), Retryable: false, Cause: ErrCauseRedirectLoop}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return FetchResult{}, &FetchError{Message: "timed out", Retryable: true, Cause: ErrCauseTimeout}
		}
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseNetworkFailure}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FetchResult{}, &FetchError{Message: err.Error(), Retryable: true, Cause: ErrCauseReadResponseBodyError}
	}

	headers := make(map[string]string, len(resp.Header))
	for k, values := range resp.Header {
		if len(values) > 0 {
			headers[k] = values[0]
		}
	}

	finalURL := param.fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:          param.fetchUrl,
		finalURL:     finalURL,
		body:         body,
		statusCode:   resp.StatusCode,
		headers:      headers,
		elapsed:      time.Since(start),
		fetchedAt:    time.Now(),
		redirectHops: redirectHops,
		modeUsed:     ModeHTTP,
	}, nil
}

// ShouldRender applies the render heuristic to an HTTP-mode result:
// any JS-framework signature present in the body, or a large body with
// zero `<p>` tags.
func ShouldRender(body []byte) bool {
	if len(body) == 0 {
		return false
	}
	text := string(body)
	for _, sig := range renderSignatures {
		if strings.Contains(text, sig) {
			return true
		}
	}
	return len(body) > 1000 && !strings.Contains(text, "<p")
}

func requestHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; SEOAuditBot/1.0)"
	}
	// Accept-Encoding is left to the transport: setting it by hand would
	// disable net/http's automatic gzip decoding.
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Connection":      "keep-alive",
	}
}
