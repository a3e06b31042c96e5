package crawler

import "time"

// Defaults applied when a setting is absent from SiteData.Settings.
const (
	DefaultMaxPages     = 5000
	DefaultMaxDepth     = 10
	DefaultConcurrency  = 20
	DefaultRateLimitRPS = 5.0
	DefaultUserAgent    = "seo-audit-platform/1.0"

	maxPagesCeiling      = 50000
	sitemapEnqueueLimit  = 1000
	defaultFetchTimeout  = 30 * time.Second
	defaultRenderTimeout = 15 * time.Second
)

// Params is the crawl configuration resolved from SiteData.Settings.
type Params struct {
	MaxPages      int
	MaxDepth      int
	Concurrency   int
	RateLimitRPS  float64
	JSRender      bool
	UserAgent     string
	FetchTimeout  time.Duration
	RenderTimeout time.Duration
}

// ParamsFromSettings reads the recognized crawl options out of the audit's
// settings map, applying defaults and the hard max_pages ceiling.
func ParamsFromSettings(settings map[string]any) Params {
	p := Params{
		MaxPages:      intSetting(settings, "max_pages", DefaultMaxPages),
		MaxDepth:      intSetting(settings, "max_depth", DefaultMaxDepth),
		Concurrency:   intSetting(settings, "concurrency", DefaultConcurrency),
		RateLimitRPS:  floatSetting(settings, "rate_limit_rps", DefaultRateLimitRPS),
		JSRender:      boolSetting(settings, "js_render", false),
		UserAgent:     stringSetting(settings, "user_agent", DefaultUserAgent),
		FetchTimeout:  defaultFetchTimeout,
		RenderTimeout: defaultRenderTimeout,
	}
	if ms := intSetting(settings, "render_timeout_ms", 0); ms > 0 {
		p.RenderTimeout = time.Duration(ms) * time.Millisecond
	}
	if p.MaxPages < 1 {
		p.MaxPages = DefaultMaxPages
	}
	if p.MaxPages > maxPagesCeiling {
		p.MaxPages = maxPagesCeiling
	}
	if p.MaxDepth < 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	if p.Concurrency < 1 {
		p.Concurrency = DefaultConcurrency
	}
	if p.RateLimitRPS <= 0 {
		p.RateLimitRPS = DefaultRateLimitRPS
	}
	return p
}

func intSetting(settings map[string]any, key string, fallback int) int {
	switch v := settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func floatSetting(settings map[string]any, key string, fallback float64) float64 {
	switch v := settings[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}

func boolSetting(settings map[string]any, key string, fallback bool) bool {
	if v, ok := settings[key].(bool); ok {
		return v
	}
	return fallback
}

func stringSetting(settings map[string]any, key, fallback string) string {
	if v, ok := settings[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
