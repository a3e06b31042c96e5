package sitemap

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

/*
Responsibilities

- Probe a fixed candidate list of sitemap locations under a site root
- Parse sitemapindex documents recursively up to a fixed depth
- Parse urlset documents into absolute page URLs
- Deduplicate the combined result

Probing a candidate that 404s or otherwise fails is not an error: it simply
contributes nothing, and the next candidate is tried.
*/

const probeTimeout = 10 * time.Second

type Discoverer struct {
	httpClient *http.Client
}

func NewDiscoverer() *Discoverer {
	return &Discoverer{httpClient: &http.Client{Timeout: probeTimeout}}
}

// Discover probes the candidate sitemap paths under siteRoot (e.g.
// "https://example.com") and returns the deduplicated set of URLs they
// contribute.
func (d *Discoverer) Discover(ctx context.Context, siteRoot string) []string {
	siteRoot = strings.TrimRight(siteRoot, "/")
	seen := make(map[string]struct{})
	var urls []string

	for _, path := range candidatePaths {
		candidateURL := siteRoot + path
		found, err := d.fetchAndParse(ctx, candidateURL, 0)
		if err != nil {
			log.Debug().Str("sitemap_url", candidateURL).Int("metadata_cause", int(mapSitemapErrorToMetadataCause(err))).Err(err).Msg("sitemap candidate unavailable, skipping")
			continue
		}
		for _, u := range found {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}

	return urls
}

func (d *Discoverer) fetchAndParse(ctx context.Context, sitemapURL string, depth int) ([]string, *SitemapError) {
	if depth > maxRecursionDepth {
		return nil, &SitemapError{Message: sitemapURL, Retryable: false, Cause: ErrCauseDepthExceeded}
	}

	body, err := d.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	if urls, indexErr := parseSitemapIndex(body); indexErr == nil && len(urls) > 0 {
		var combined []string
		for _, childURL := range urls {
			children, err := d.fetchAndParse(ctx, childURL, depth+1)
			if err != nil {
				log.Debug().Str("sitemap_url", childURL).Err(err).Msg("nested sitemap unavailable, skipping")
				continue
			}
			combined = append(combined, children...)
		}
		return combined, nil
	}

	locs, parseErr := parseURLSet(body)
	if parseErr != nil {
		return nil, &SitemapError{Message: parseErr.Error(), Retryable: false, Cause: ErrCauseParseFailed}
	}
	return locs, nil
}

func (d *Discoverer) fetch(ctx context.Context, sitemapURL string) ([]byte, *SitemapError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, &SitemapError{Message: err.Error(), Retryable: false, Cause: ErrCauseFetchFailed}
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, &SitemapError{Message: err.Error(), Retryable: true, Cause: ErrCauseFetchFailed}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &SitemapError{Message: sitemapURL, Retryable: false, Cause: ErrCauseFetchFailed}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SitemapError{Message: err.Error(), Retryable: true, Cause: ErrCauseFetchFailed}
	}
	return body, nil
}

func parseSitemapIndex(body []byte) ([]string, error) {
	var idx sitemapIndex
	if err := xml.Unmarshal(body, &idx); err != nil {
		return nil, err
	}
	if len(idx.Sitemaps) == 0 {
		return nil, nil
	}
	urls := make([]string, 0, len(idx.Sitemaps))
	for _, s := range idx.Sitemaps {
		if s.Loc != "" {
			urls = append(urls, s.Loc)
		}
	}
	return urls, nil
}

func parseURLSet(body []byte) ([]string, error) {
	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(set.URLs))
	for _, u := range set.URLs {
		if u.Loc != "" {
			urls = append(urls, u.Loc)
		}
	}
	return urls, nil
}
