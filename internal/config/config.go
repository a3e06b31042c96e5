package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// weightSumTolerance is how far the eight category weights may drift from
// 1.0 before the config is rejected.
const weightSumTolerance = 0.001

type Config struct {
	//===============
	//  Audit scope
	//===============
	// Root URL the crawl starts from.
	rootURL url.URL
	// Host the www-consistency check treats as canonical. Empty means
	// any mixture of www/bare hosts is flagged.
	canonicalHost string

	//===============
	// Limits
	//===============
	// Maximum number of hyperlink hops from the root URL
	maxDepth int
	// Maximum number of pages fetched per audit
	maxPages int

	//===============
	// Politeness
	//===============
	// Maximum number of crawl worker goroutines processing URLs concurrently;
	// it does not control OS threads or CPU parallelism.
	concurrency int
	// Token-bucket refill rate per host, in requests per second
	rateLimitRPS float64
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during fetch retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single HTTP fetch request
	timeout time.Duration
	// Maximum time of a single headless render
	renderTimeout time.Duration
	// Force headless rendering for every fetch
	jsRender bool
	// User agent used for robots.txt and page fetches
	userAgent string
	// Skip TLS certificate verification on outbound fetches. Defaults to
	// true: misconfigured enterprise sites are common audit targets.
	insecureSkipVerify bool

	//===============
	// Scoring
	//===============
	// Monthly organic traffic baseline for the revenue model
	monthlyTraffic float64
	// Per-category weights of the overall score; must sum to 1.0
	categoryWeights map[string]float64

	//===============
	// Output
	//===============
	// Directory holding the local audit database
	outputDir string
}

// configDTO is the YAML file shape. Absent keys keep their defaults.
type configDTO struct {
	RootURL                string             `yaml:"rootUrl"`
	CanonicalHost          string             `yaml:"canonicalHost,omitempty"`
	MaxDepth               int                `yaml:"maxDepth,omitempty"`
	MaxPages               int                `yaml:"maxPages,omitempty"`
	Concurrency            int                `yaml:"concurrency,omitempty"`
	RateLimitRPS           float64            `yaml:"rateLimitRps,omitempty"`
	RandomSeed             int64              `yaml:"randomSeed,omitempty"`
	MaxAttempt             int                `yaml:"maxAttempt,omitempty"`
	BackoffInitialDuration time.Duration      `yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64            `yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration      `yaml:"backoffMaxDuration,omitempty"`
	Timeout                time.Duration      `yaml:"timeout,omitempty"`
	RenderTimeoutMs        int                `yaml:"renderTimeoutMs,omitempty"`
	JSRender               bool               `yaml:"jsRender,omitempty"`
	UserAgent              string             `yaml:"userAgent,omitempty"`
	InsecureSkipVerify     *bool              `yaml:"insecureSkipVerify,omitempty"`
	MonthlyTraffic         float64            `yaml:"monthlyTraffic,omitempty"`
	CategoryWeights        map[string]float64 `yaml:"categoryWeights,omitempty"`
	OutputDir              string             `yaml:"outputDir,omitempty"`
}

// WithDefault returns a builder seeded with every documented default.
func WithDefault(rootURL url.URL) *Config {
	return &Config{
		rootURL:                rootURL,
		maxDepth:               10,
		maxPages:               5000,
		concurrency:            20,
		rateLimitRPS:           5.0,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 1 * time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		timeout:                30 * time.Second,
		renderTimeout:          15 * time.Second,
		jsRender:               false,
		userAgent:              "seo-audit-platform/1.0",
		insecureSkipVerify:     true,
		monthlyTraffic:         10000,
		categoryWeights: map[string]float64{
			"crawlability":   0.15,
			"technical":      0.20,
			"on_page":        0.15,
			"content":        0.15,
			"performance":    0.15,
			"internal_links": 0.10,
			"schema":         0.05,
			"authority":      0.05,
		},
		outputDir: "audits",
	}
}

// WithConfigFile loads a YAML overlay on top of the defaults. Precedence
// is flag > file > default; flags are applied by the CLI after this.
func WithConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrFileDoesNotExist
		}
		return Config{}, ErrReadConfigFail
	}

	var dto configDTO
	if err := yaml.Unmarshal(raw, &dto); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigParsingFail, err)
	}

	return newConfigFromDTO(dto)
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	rootURL := url.URL{}
	if dto.RootURL != "" {
		parsed, err := url.Parse(dto.RootURL)
		if err != nil || parsed.Host == "" {
			return Config{}, fmt.Errorf("%w: bad rootUrl %q", ErrInvalidConfig, dto.RootURL)
		}
		rootURL = *parsed
	}

	builder := WithDefault(rootURL)
	if dto.CanonicalHost != "" {
		builder.canonicalHost = dto.CanonicalHost
	}
	if dto.MaxDepth > 0 {
		builder.maxDepth = dto.MaxDepth
	}
	if dto.MaxPages > 0 {
		builder.maxPages = dto.MaxPages
	}
	if dto.Concurrency > 0 {
		builder.concurrency = dto.Concurrency
	}
	if dto.RateLimitRPS > 0 {
		builder.rateLimitRPS = dto.RateLimitRPS
	}
	if dto.RandomSeed != 0 {
		builder.randomSeed = dto.RandomSeed
	}
	if dto.MaxAttempt > 0 {
		builder.maxAttempt = dto.MaxAttempt
	}
	if dto.BackoffInitialDuration > 0 {
		builder.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier > 0 {
		builder.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration > 0 {
		builder.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.Timeout > 0 {
		builder.timeout = dto.Timeout
	}
	if dto.RenderTimeoutMs > 0 {
		builder.renderTimeout = time.Duration(dto.RenderTimeoutMs) * time.Millisecond
	}
	if dto.JSRender {
		builder.jsRender = true
	}
	if dto.UserAgent != "" {
		builder.userAgent = dto.UserAgent
	}
	if dto.InsecureSkipVerify != nil {
		builder.insecureSkipVerify = *dto.InsecureSkipVerify
	}
	if dto.MonthlyTraffic > 0 {
		builder.monthlyTraffic = dto.MonthlyTraffic
	}
	if len(dto.CategoryWeights) > 0 {
		builder.categoryWeights = dto.CategoryWeights
	}
	if dto.OutputDir != "" {
		builder.outputDir = dto.OutputDir
	}

	return builder.Build()
}

// Build validates the assembled config and returns it by value.
func (c *Config) Build() (Config, error) {
	if c.maxPages < 1 || c.maxPages > 50000 {
		return Config{}, fmt.Errorf("%w: maxPages %d out of range [1, 50000]", ErrInvalidConfig, c.maxPages)
	}
	if c.maxDepth < 0 {
		return Config{}, fmt.Errorf("%w: maxDepth must be non-negative", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1", ErrInvalidConfig)
	}
	if c.rateLimitRPS <= 0 {
		return Config{}, fmt.Errorf("%w: rateLimitRps must be positive", ErrInvalidConfig)
	}
	if len(c.categoryWeights) > 0 {
		var sum float64
		for _, w := range c.categoryWeights {
			if w < 0 {
				return Config{}, fmt.Errorf("%w: negative category weight", ErrInvalidConfig)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > weightSumTolerance {
			return Config{}, fmt.Errorf("%w: category weights sum to %.3f, want 1.0", ErrInvalidConfig, sum)
		}
	}
	return *c, nil
}

// Builder setters, applied by the CLI for flag > file > default precedence.

func (c *Config) WithRootURL(u url.URL) *Config {
	c.rootURL = u
	return c
}

func (c *Config) WithCanonicalHost(host string) *Config {
	c.canonicalHost = host
	return c
}

func (c *Config) WithMaxDepth(depth int) *Config {
	c.maxDepth = depth
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithRateLimitRPS(rps float64) *Config {
	c.rateLimitRPS = rps
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithRenderTimeout(timeout time.Duration) *Config {
	c.renderTimeout = timeout
	return c
}

func (c *Config) WithJSRender(render bool) *Config {
	c.jsRender = render
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithInsecureSkipVerify(skip bool) *Config {
	c.insecureSkipVerify = skip
	return c
}

func (c *Config) WithMonthlyTraffic(traffic float64) *Config {
	c.monthlyTraffic = traffic
	return c
}

func (c *Config) WithCategoryWeights(weights map[string]float64) *Config {
	c.categoryWeights = weights
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

// Getters

func (c Config) RootURL() url.URL                       { return c.rootURL }
func (c Config) CanonicalHost() string                  { return c.canonicalHost }
func (c Config) MaxDepth() int                          { return c.maxDepth }
func (c Config) MaxPages() int                          { return c.maxPages }
func (c Config) Concurrency() int                       { return c.concurrency }
func (c Config) RateLimitRPS() float64                  { return c.rateLimitRPS }
func (c Config) RandomSeed() int64                      { return c.randomSeed }
func (c Config) MaxAttempt() int                        { return c.maxAttempt }
func (c Config) BackoffInitialDuration() time.Duration  { return c.backoffInitialDuration }
func (c Config) BackoffMultiplier() float64             { return c.backoffMultiplier }
func (c Config) BackoffMaxDuration() time.Duration      { return c.backoffMaxDuration }
func (c Config) Timeout() time.Duration                 { return c.timeout }
func (c Config) RenderTimeout() time.Duration           { return c.renderTimeout }
func (c Config) JSRender() bool                         { return c.jsRender }
func (c Config) UserAgent() string                      { return c.userAgent }
func (c Config) InsecureSkipVerify() bool               { return c.insecureSkipVerify }
func (c Config) MonthlyTraffic() float64                { return c.monthlyTraffic }
func (c Config) CategoryWeights() map[string]float64 {
	out := make(map[string]float64, len(c.categoryWeights))
	for k, v := range c.categoryWeights {
		out[k] = v
	}
	return out
}
func (c Config) OutputDir() string { return c.outputDir }

// Settings flattens the config into the SiteData.Settings map the
// pipeline stages read.
func (c Config) Settings() map[string]any {
	return map[string]any{
		"max_pages":         c.maxPages,
		"max_depth":         c.maxDepth,
		"concurrency":       c.concurrency,
		"rate_limit_rps":    c.rateLimitRPS,
		"js_render":         c.jsRender,
		"user_agent":        c.userAgent,
		"render_timeout_ms": int(c.renderTimeout / time.Millisecond),
		"monthly_traffic":   c.monthlyTraffic,
		"category_weights":  c.CategoryWeights(),
		"canonical_host":    c.canonicalHost,
	}
}
