package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func root(t *testing.T) url.URL {
	t.Helper()
	u, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	return *u
}

func TestWithDefault_DocumentedDefaults(t *testing.T) {
	cfg, err := WithDefault(root(t)).Build()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.MaxPages())
	assert.Equal(t, 10, cfg.MaxDepth())
	assert.Equal(t, 20, cfg.Concurrency())
	assert.InDelta(t, 5.0, cfg.RateLimitRPS(), 0.001)
	assert.False(t, cfg.JSRender())
	assert.InDelta(t, 10000, cfg.MonthlyTraffic(), 0.001)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 15*time.Second, cfg.RenderTimeout())
	assert.True(t, cfg.InsecureSkipVerify())

	var sum float64
	for _, w := range cfg.CategoryWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 0.0001)
}

func TestBuild_RejectsBadValues(t *testing.T) {
	_, err := WithDefault(root(t)).WithMaxPages(0).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = WithDefault(root(t)).WithMaxPages(50001).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = WithDefault(root(t)).WithConcurrency(0).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = WithDefault(root(t)).WithRateLimitRPS(0).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuild_RejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := WithDefault(root(t)).WithCategoryWeights(map[string]float64{
		"technical": 0.5,
		"on_page":   0.2,
	}).Build()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBuilderChaining(t *testing.T) {
	cfg, err := WithDefault(root(t)).
		WithMaxPages(100).
		WithMaxDepth(3).
		WithConcurrency(5).
		WithRateLimitRPS(2.5).
		WithJSRender(true).
		WithUserAgent("custom-agent/2.0").
		WithMonthlyTraffic(50000).
		WithCanonicalHost("www.example.com").
		Build()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.MaxPages())
	assert.Equal(t, 3, cfg.MaxDepth())
	assert.Equal(t, 5, cfg.Concurrency())
	assert.InDelta(t, 2.5, cfg.RateLimitRPS(), 0.001)
	assert.True(t, cfg.JSRender())
	assert.Equal(t, "custom-agent/2.0", cfg.UserAgent())
	assert.InDelta(t, 50000, cfg.MonthlyTraffic(), 0.001)
	assert.Equal(t, "www.example.com", cfg.CanonicalHost())
}

func TestWithConfigFile_OverlayOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rootUrl: https://example.com/
maxPages: 250
concurrency: 8
jsRender: true
userAgent: file-agent/1.0
monthlyTraffic: 25000
insecureSkipVerify: false
`), 0644))

	cfg, err := WithConfigFile(path)
	require.NoError(t, err)

	rootURL := cfg.RootURL()
	assert.Equal(t, "https://example.com/", rootURL.String())
	assert.Equal(t, 250, cfg.MaxPages())
	assert.Equal(t, 8, cfg.Concurrency())
	assert.True(t, cfg.JSRender())
	assert.Equal(t, "file-agent/1.0", cfg.UserAgent())
	assert.InDelta(t, 25000, cfg.MonthlyTraffic(), 0.001)
	assert.False(t, cfg.InsecureSkipVerify(), "explicit false overrides the trust-broadened default")
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.MaxDepth())
}

func TestWithConfigFile_MissingFile(t *testing.T) {
	_, err := WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrFileDoesNotExist)
}

func TestWithConfigFile_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxPages: [not an int"), 0644))

	_, err := WithConfigFile(path)
	assert.ErrorIs(t, err, ErrConfigParsingFail)
}

func TestSettings_FlattensForSiteData(t *testing.T) {
	cfg, err := WithDefault(root(t)).WithMaxPages(42).Build()
	require.NoError(t, err)

	settings := cfg.Settings()
	assert.Equal(t, 42, settings["max_pages"])
	assert.Equal(t, 20, settings["concurrency"])
	assert.Equal(t, false, settings["js_render"])
	assert.Equal(t, 15000, settings["render_timeout_ms"])
	weights, ok := settings["category_weights"].(map[string]float64)
	require.True(t, ok)
	assert.InDelta(t, 0.20, weights["technical"], 0.001)
}
