package robotsgate

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Pavankona715/seo-audit-platform/internal/metadata"
)

/*
Responsibilities

- Fetch robots.txt per host
- Cache rules for crawl duration
- Enforce allow/disallow rules before enqueue

Robots checks occur before a URL enters the frontier.

Failure posture: if robots.txt cannot be fetched, or comes back with a
non-200 status, every URL on that host is allowed. The gate fails open;
only an explicit Disallow closes it.
*/

// Gate is the admission port the crawler consults before fetching a URL.
type Gate interface {
	// Decide reports whether u may be fetched under the configured user
	// agent, with the host's crawl-delay override when one is declared.
	Decide(ctx context.Context, u url.URL) Decision
	// RawRobotsTxt returns the robots.txt body for the host, or "" when
	// none exists.
	RawRobotsTxt(ctx context.Context, scheme, host string) string
}

// Robot is the caching Gate implementation. Rule sets are resolved once
// per host and reused for the crawl's duration.
type Robot struct {
	fetcher      *RobotsFetcher
	metadataSink metadata.MetadataSink

	mu       sync.Mutex
	ruleSets map[string]ruleSet
	raw      map[string]string
	failed   map[string]bool // hosts whose robots fetch failed: allow all
}

func NewRobot(fetcher *RobotsFetcher, metadataSink metadata.MetadataSink) *Robot {
	return &Robot{
		fetcher:      fetcher,
		metadataSink: metadataSink,
		ruleSets:     make(map[string]ruleSet),
		raw:          make(map[string]string),
		failed:       make(map[string]bool),
	}
}

// Decide resolves the host's rule set (fetching robots.txt on first
// contact) and evaluates u's path against it.
func (r *Robot) Decide(ctx context.Context, u url.URL) Decision {
	rs, ok := r.ruleSetFor(ctx, u.Scheme, u.Host)
	if !ok {
		// fetch failure or non-200: fail open
		return Decision{Url: u, Allowed: true, Reason: EmptyRuleSet}
	}

	decision := Decision{Url: u, CrawlDelay: rs.CrawlDelay()}

	if !rs.matchedGroup {
		decision.Allowed = true
		if rs.hasGroups {
			decision.Reason = UserAgentNotMatched
		} else {
			decision.Reason = EmptyRuleSet
		}
		return decision
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	allowLen, allowed := longestMatch(rs.allowRules, path)
	disallowLen, disallowed := longestMatch(rs.disallowRules, path)

	switch {
	case !disallowed:
		decision.Allowed = true
		decision.Reason = NoMatchingRules
		if allowed {
			decision.Reason = AllowedByRobots
		}
	case allowed && allowLen >= disallowLen:
		// the more specific rule wins; allow wins ties
		decision.Allowed = true
		decision.Reason = AllowedByRobots
	default:
		decision.Allowed = false
		decision.Reason = DisallowedByRobots
	}
	return decision
}

// RawRobotsTxt returns the robots.txt content for the host, fetching and
// caching it if needed.
func (r *Robot) RawRobotsTxt(ctx context.Context, scheme, host string) string {
	r.ruleSetFor(ctx, scheme, host)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw[host]
}

// CrawlDelayFor returns the host's Crawl-delay directive, if any.
func (r *Robot) CrawlDelayFor(ctx context.Context, scheme, host string) *time.Duration {
	rs, ok := r.ruleSetFor(ctx, scheme, host)
	if !ok {
		return nil
	}
	return rs.CrawlDelay()
}

func (r *Robot) ruleSetFor(ctx context.Context, scheme, host string) (ruleSet, bool) {
	r.mu.Lock()
	if rs, ok := r.ruleSets[host]; ok {
		r.mu.Unlock()
		return rs, true
	}
	if r.failed[host] {
		r.mu.Unlock()
		return ruleSet{}, false
	}
	r.mu.Unlock()

	result, robotsErr := r.fetcher.Fetch(ctx, scheme, host)

	r.mu.Lock()
	defer r.mu.Unlock()

	if robotsErr != nil {
		log.Debug().Str("host", host).Err(robotsErr).Msg("robots.txt fetch failed, allowing all")
		if r.metadataSink != nil {
			r.metadataSink.RecordError(metadata.NewErrorRecord(
				"robotsgate", "fetch", mapRobotsErrorToMetadataCause(robotsErr), robotsErr,
				metadata.NewAttr(metadata.AttrHost, host),
			))
		}
		r.failed[host] = true
		return ruleSet{}, false
	}
	if result.HTTPStatus != 200 {
		r.failed[host] = true
		return ruleSet{}, false
	}

	rs := MapResponseToRuleSet(result.Response, r.fetcher.UserAgent(), result.FetchedAt)
	r.ruleSets[host] = rs
	r.raw[host] = result.Raw
	return rs, true
}

// longestMatch returns the length of the longest rule pattern matching
// path, and whether any rule matched. Longer patterns are more specific
// and take precedence in Decide.
func longestMatch(rules []pathRule, path string) (int, bool) {
	best := -1
	for _, rule := range rules {
		if patternMatches(rule.prefix, path) && len(rule.prefix) > best {
			best = len(rule.prefix)
		}
	}
	return best, best >= 0
}

// patternMatches implements robots.txt path matching: plain prefix match
// plus "*" (any run of characters) and a trailing "$" (end anchor).
func patternMatches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			if !strings.HasPrefix(path, part) {
				return false
			}
			pos = len(part)
			continue
		}
		idx := strings.Index(path[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}

	if anchored {
		if len(parts) > 1 && parts[len(parts)-1] == "" {
			// pattern ends in "*$": the wildcard absorbs the tail
			return true
		}
		return pos == len(path)
	}
	return true
}
