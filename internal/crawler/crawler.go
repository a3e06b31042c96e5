package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/extractor"
	"github.com/Pavankona715/seo-audit-platform/internal/frontier"
	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
	"github.com/Pavankona715/seo-audit-platform/internal/pagefetch"
	"github.com/Pavankona715/seo-audit-platform/internal/ratelimit"
	"github.com/Pavankona715/seo-audit-platform/internal/robotsgate"
	"github.com/Pavankona715/seo-audit-platform/internal/seomodel"
	"github.com/Pavankona715/seo-audit-platform/pkg/failure"
	"github.com/Pavankona715/seo-audit-platform/pkg/hashutil"
	"github.com/Pavankona715/seo-audit-platform/pkg/retry"
	"github.com/Pavankona715/seo-audit-platform/pkg/urlutil"
)

/*
 Crawler is the sole control-plane authority of the crawl phase.

 Determinism and admission guarantees:
 - The crawler is the ONLY component allowed to decide whether a URL
   may enter the crawl frontier.
 - All semantic admission checks (normalization, scope, dedup, depth,
   robots) complete in the owner loop before a URL is dispatched to a
   worker.
 - The frontier, visited set, fingerprint set and crawl stats are
   single-owner structures: only the owner loop mutates them. Workers
   fetch and extract; they never touch shared state.

 BFS order is preserved per batch but not globally: URLs dequeued in the
 same batch complete in arbitrary order.
*/

// PageFetcher is the fetch port (HTTP or rendered).
type PageFetcher interface {
	Fetch(ctx context.Context, param pagefetch.FetchParam, retryParam retry.RetryParam) (pagefetch.FetchResult, failure.ClassifiedError)
}

// RobotsGate is the admission port plus the crawl-delay/raw-content reads
// the crawler needs at initialization.
type RobotsGate interface {
	Decide(ctx context.Context, u url.URL) robotsgate.Decision
	RawRobotsTxt(ctx context.Context, scheme, host string) string
	CrawlDelayFor(ctx context.Context, scheme, host string) *time.Duration
}

// SitemapDiscoverer locates and flattens XML sitemaps under a site root.
type SitemapDiscoverer interface {
	Discover(ctx context.Context, siteRoot string) []string
}

type Crawler struct {
	fetcher      PageFetcher
	robot        RobotsGate
	discoverer   SitemapDiscoverer
	limiter      ratelimit.Limiter
	domExtractor extractor.Extractor
	metadataSink metadata.MetadataSink
	retryParam   retry.RetryParam
}

func NewCrawler(
	fetcher PageFetcher,
	robot RobotsGate,
	discoverer SitemapDiscoverer,
	limiter ratelimit.Limiter,
	domExtractor extractor.Extractor,
	metadataSink metadata.MetadataSink,
	retryParam retry.RetryParam,
) *Crawler {
	return &Crawler{
		fetcher:      fetcher,
		robot:        robot,
		discoverer:   discoverer,
		limiter:      limiter,
		domExtractor: domExtractor,
		metadataSink: metadataSink,
		retryParam:   retryParam,
	}
}

// pageOutcome is what a worker hands back to the owner loop.
type pageOutcome struct {
	item     frontier.CrawlItem
	page     seomodel.PageData
	finalURL url.URL
	rendered bool
	failed   bool
}

// Crawl drives the BFS loop over site.RootURL, populating site.Pages,
// site.SitemapURLs, site.RobotsTxt and site.CrawlStats. On context
// cancellation it returns whatever pages it has already collected, with
// stats stamped; only an unusable root URL is a hard error.
func (c *Crawler) Crawl(ctx context.Context, site *seomodel.SiteData) failure.ClassifiedError {
	params := ParamsFromSettings(site.Settings)
	start := time.Now()

	stats := seomodel.CrawlStats{StartedAt: start}
	defer func() {
		stats.ElapsedSeconds = time.Since(start).Seconds()
		if stats.ElapsedSeconds > 0 {
			stats.PagesPerSecond = float64(stats.TotalCrawled) / stats.ElapsedSeconds
		}
		site.CrawlStats = stats
	}()

	rootURL, err := url.Parse(site.RootURL)
	if err != nil || rootURL.Host == "" {
		return &CrawlError{
			Message:   fmt.Sprintf("cannot parse root url %q", site.RootURL),
			Retryable: false,
			Cause:     ErrCauseInvalidRootURL,
		}
	}

	// Robots first: raw content for SiteData, crawl-delay for the limiter.
	site.RobotsTxt = c.robot.RawRobotsTxt(ctx, rootURL.Scheme, rootURL.Host)
	if delay := c.robot.CrawlDelayFor(ctx, rootURL.Scheme, rootURL.Host); delay != nil && *delay > 0 {
		c.limiter.SetCrawlDelay(rootURL.Hostname(), *delay)
	}

	front := frontier.NewFrontier(params.MaxPages)

	// Sitemap discovery seeds the frontier at depth 1.
	sitemapURLs := c.discoverer.Discover(ctx, site.RootURL)
	site.SitemapURLs = sitemapURLs
	stats.SitemapURLsFound = len(sitemapURLs)
	for i, raw := range sitemapURLs {
		if i >= sitemapEnqueueLimit {
			break
		}
		u, perr := url.Parse(raw)
		if perr != nil {
			continue
		}
		if front.Submit(frontier.NewCrawlItem(*u, 1, site.RootURL, frontier.SourceSitemap)) {
			stats.TotalQueued++
		}
	}

	if front.Submit(frontier.NewCrawlItem(*rootURL, 0, "", frontier.SourceManual)) {
		stats.TotalQueued++
	}

	sem := make(chan struct{}, params.Concurrency)

	for front.Size() > 0 && len(site.Pages) < params.MaxPages {
		if ctx.Err() != nil {
			log.Info().Int("pages", len(site.Pages)).Msg("crawl cancelled, returning partial result")
			return nil
		}

		batchSize := 2 * params.Concurrency
		if remaining := params.MaxPages - len(site.Pages); remaining < batchSize {
			batchSize = remaining
		}
		batch := front.DequeueBatch(batchSize)

		// Admission runs in the owner loop so visited-set insertion stays
		// single-owner and remains the linearization point for dedup.
		var admitted []frontier.CrawlItem
		for _, item := range batch {
			if target, ok := c.admit(ctx, item, site.RootDomain, params, &front, &stats); ok {
				admitted = append(admitted, frontier.NewCrawlItem(target, item.Depth(), item.ParentURL(), item.Source()))
			}
		}

		outcomes := make(chan pageOutcome, len(admitted))
		var wg sync.WaitGroup
		for _, item := range admitted {
			wg.Add(1)
			go func(item frontier.CrawlItem) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				outcomes <- c.processURL(ctx, item, params)
			}(item)
		}
		wg.Wait()
		close(outcomes)

		for outcome := range outcomes {
			c.absorb(outcome, site, params, &front, &stats)
		}
	}

	return nil
}

// admit applies per-URL steps 1-5: normalize, scope, dedup, depth,
// robots. It returns the normalized URL to fetch and whether the item
// survived admission.
func (c *Crawler) admit(
	ctx context.Context,
	item frontier.CrawlItem,
	rootDomain string,
	params Params,
	front *frontier.Frontier,
	stats *seomodel.CrawlStats,
) (url.URL, bool) {
	raw := item.URL()
	normalized, err := urlutil.Normalize(raw.String(), raw)
	if err != nil {
		return url.URL{}, false
	}
	if !urlutil.SameDomain(normalized.Hostname(), rootDomain) {
		return url.URL{}, false
	}
	if !front.MarkVisited(normalized.String()) {
		return url.URL{}, false
	}
	if item.Depth() > params.MaxDepth {
		stats.TotalSkipped++
		return url.URL{}, false
	}
	decision := c.robot.Decide(ctx, normalized)
	if !decision.Allowed {
		stats.TotalSkipped++
		log.Debug().Str("url", normalized.String()).Str("reason", string(decision.Reason)).Msg("robots disallowed")
		return url.URL{}, false
	}
	return normalized, true
}

// processURL runs in a worker goroutine: rate-limit, fetch, extract. It
// builds a complete PageData but mutates no crawler state.
func (c *Crawler) processURL(ctx context.Context, item frontier.CrawlItem, params Params) pageOutcome {
	target := item.URL()
	c.limiter.Acquire(target.Hostname())

	mode := pagefetch.ModeAuto
	timeout := params.FetchTimeout
	if params.JSRender {
		mode = pagefetch.ModeRendered
		timeout = params.RenderTimeout
	}

	fetchStart := time.Now()
	result, fetchErr := c.fetcher.Fetch(ctx, pagefetch.NewFetchParam(target, params.UserAgent, mode, timeout), c.retryParam)
	if fetchErr != nil {
		page := seomodel.NewPageData(target.String())
		page.Status = transportStatus(fetchErr)
		page.LoadTimeMs = time.Since(fetchStart).Milliseconds()
		page.CrawledAt = time.Now()
		if c.metadataSink != nil {
			c.metadataSink.RecordError(metadata.NewErrorRecord(
				"crawler", "processURL", metadata.CauseNetworkFailure, fetchErr,
				metadata.NewAttr(metadata.AttrURL, target.String()),
				metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(item.Depth())),
			))
		}
		return pageOutcome{item: item, page: page, finalURL: target, failed: true}
	}

	finalURL := result.FinalURL()
	page := seomodel.NewPageData(finalURL.String())
	page.Status = result.Code()
	page.HTML = string(result.Body())
	page.Headers = result.Headers()
	page.LoadTimeMs = result.Elapsed().Milliseconds()
	page.ByteSize = int(result.SizeByte())
	page.CrawledAt = result.FetchedAt()
	if ct, ok := result.Header("Content-Type"); ok {
		page.ContentType = ct
	}
	page.Meta["redirect_hops"] = strconv.Itoa(result.RedirectHops())

	if page.Status == 200 && isHTMLContentType(page.ContentType) {
		extraction, extErr := c.domExtractor.Extract(finalURL, result.Body())
		if extErr == nil {
			mergeExtraction(&page, extraction)
		}
	}

	if c.metadataSink != nil {
		c.metadataSink.RecordFetch(metadata.NewFetchEvent(
			finalURL.String(), page.Status, result.Elapsed(), page.ContentType, 0, item.Depth(),
		))
	}

	return pageOutcome{
		item:     item,
		page:     page,
		finalURL: finalURL,
		rendered: result.ModeUsed() == pagefetch.ModeRendered,
	}
}

// absorb runs in the owner loop: stats, fingerprint dedup, page append,
// and frontier expansion from the page's outbound links.
func (c *Crawler) absorb(
	outcome pageOutcome,
	site *seomodel.SiteData,
	params Params,
	front *frontier.Frontier,
	stats *seomodel.CrawlStats,
) {
	page := outcome.page
	page.Depth = outcome.item.Depth()

	if outcome.failed || page.Status >= 400 {
		stats.TotalFailed++
	} else {
		stats.TotalCrawled++
	}
	if outcome.failed {
		site.Pages = append(site.Pages, page)
		return
	}
	if outcome.rendered {
		stats.JSRendered++
		page.Meta["rendered"] = "true"
	}

	if page.Status == 200 && page.HTML != "" {
		fp := hashutil.Fingerprint128([]byte(page.HTML))
		if !front.AddFingerprint(fp) {
			page.Meta["is_duplicate_content"] = "true"
		}
	}

	site.Pages = append(site.Pages, page)

	if outcome.item.Depth() >= params.MaxDepth {
		return
	}
	base := outcome.finalURL
	for _, href := range page.Links {
		normalized, err := urlutil.Normalize(href, base)
		if err != nil {
			continue
		}
		if !urlutil.SameDomain(normalized.Hostname(), site.RootDomain) {
			continue
		}
		if front.IsVisited(normalized.String()) {
			continue
		}
		if front.Submit(frontier.NewCrawlItem(normalized, outcome.item.Depth()+1, page.URL, frontier.SourceLink)) {
			stats.TotalQueued++
		}
	}
}

func mergeExtraction(page *seomodel.PageData, extraction extractor.ExtractionResult) {
	for k, v := range extraction.Meta {
		page.Meta[k] = v
	}
	page.CanonicalURL = extraction.CanonicalURL
	page.Links = extraction.Links
	page.Images = extraction.Images
	page.StructuredData = extraction.StructuredData
	page.TextContent = extraction.TextContent
	page.Meta["word_count"] = strconv.Itoa(extraction.WordCount)
	page.Meta["h1_count"] = strconv.Itoa(extraction.H1Count)
	if extraction.HasRelNext {
		page.Meta["rel_next"] = "true"
	}
	if extraction.HasRelPrev {
		page.Meta["rel_prev"] = "true"
	}
}

// transportStatus maps fetch failures to the PageData status taxonomy:
// 408 for timeouts, 310 for redirect cycles, 0 for everything else.
func transportStatus(fetchErr failure.ClassifiedError) int {
	var fe *pagefetch.FetchError
	if errors.As(fetchErr, &fe) {
		return fe.StatusFor()
	}
	return 0
}

func isHTMLContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	lower := strings.ToLower(contentType)
	return strings.Contains(lower, "text/html") || strings.Contains(lower, "application/xhtml")
}
