package cmd

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRoot(t *testing.T) url.URL {
	t.Helper()
	u, err := url.Parse("https://example.com/")
	require.NoError(t, err)
	return *u
}

func TestInitConfig_DefaultsWithoutFileOrFlags(t *testing.T) {
	ResetFlags()
	t.Cleanup(ResetFlags)

	cfg, err := initConfig(parseRoot(t))
	require.NoError(t, err)

	rootURL := cfg.RootURL()
	assert.Equal(t, "https://example.com/", rootURL.String())
	assert.Equal(t, 5000, cfg.MaxPages())
	assert.Equal(t, 20, cfg.Concurrency())
}

func TestInitConfig_FlagsOverrideDefaults(t *testing.T) {
	ResetFlags()
	t.Cleanup(ResetFlags)

	maxPages = 123
	concurrency = 7
	userAgent = "flag-agent/1.0"
	jsRender = true
	timeout = 12 * time.Second
	monthlyTraffic = 33000

	cfg, err := initConfig(parseRoot(t))
	require.NoError(t, err)

	assert.Equal(t, 123, cfg.MaxPages())
	assert.Equal(t, 7, cfg.Concurrency())
	assert.Equal(t, "flag-agent/1.0", cfg.UserAgent())
	assert.True(t, cfg.JSRender())
	assert.Equal(t, 12*time.Second, cfg.Timeout())
	assert.InDelta(t, 33000, cfg.MonthlyTraffic(), 0.001)
}

func TestInitConfig_FlagBeatsFile(t *testing.T) {
	ResetFlags()
	t.Cleanup(ResetFlags)

	path := filepath.Join(t.TempDir(), "audit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxPages: 250\nconcurrency: 8\n"), 0644))

	cfgFile = path
	maxPages = 99

	cfg, err := initConfig(parseRoot(t))
	require.NoError(t, err)

	assert.Equal(t, 99, cfg.MaxPages(), "flag wins over file")
	assert.Equal(t, 8, cfg.Concurrency(), "file wins over default")
}

func TestInitConfig_BadFileSurfacesError(t *testing.T) {
	ResetFlags()
	t.Cleanup(ResetFlags)

	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := initConfig(parseRoot(t))
	assert.Error(t, err)
}
