package cmd

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Pavankona715/seo-audit-platform/internal/build"
	"github.com/Pavankona715/seo-audit-platform/internal/config"
)

var (
	cfgFile        string
	rootURL        string
	canonicalHost  string
	maxDepth       int
	maxPages       int
	concurrency    int
	rateLimitRPS   float64
	jsRender       bool
	userAgent      string
	timeout        time.Duration
	renderTimeout  time.Duration
	monthlyTraffic float64
	outputDir      string
	randomSeed     int64
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seo-audit",
	Short: "Audit a website for SEO defects.",
	Long: `seo-audit crawls a website, runs a set of analysis engines over the
crawled pages, and produces a weighted overall score plus a prioritized,
revenue-weighted remediation plan.

The crawl is polite (robots.txt, per-host rate limiting) and deterministic
for a stable site; results are persisted to a local database under the
output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()

		if rootURL == "" {
			return fmt.Errorf("--url is required")
		}
		parsed, err := url.Parse(rootURL)
		if err != nil || parsed.Host == "" {
			return fmt.Errorf("cannot parse --url %q", rootURL)
		}

		cfg, err := initConfig(*parsed)
		if err != nil {
			return err
		}

		return runAudit(cmd.Context(), cfg)
	},
	SilenceUsage: true,
	Version:      build.FullVersion(),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&rootURL, "url", "", "root URL of the site to audit")
	rootCmd.PersistentFlags().StringVar(&canonicalHost, "canonical-host", "", "host the www-consistency check treats as canonical")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from the root URL")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to crawl")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent fetch workers")
	rootCmd.PersistentFlags().Float64Var(&rateLimitRPS, "rate-limit", 0, "per-host request rate in requests per second")
	rootCmd.PersistentFlags().BoolVar(&jsRender, "js-render", false, "force headless rendering for every page")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().DurationVar(&renderTimeout, "render-timeout", 0, "timeout for headless rendering")
	rootCmd.PersistentFlags().Float64Var(&monthlyTraffic, "monthly-traffic", 0, "monthly organic traffic baseline for the revenue model")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory holding the local audit database")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// initConfig applies flag > file > default precedence.
func initConfig(root url.URL) (config.Config, error) {
	var builder *config.Config
	if cfgFile != "" {
		fileCfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		builder = fileCfg.WithRootURL(root)
	} else {
		builder = config.WithDefault(root)
	}

	if canonicalHost != "" {
		builder = builder.WithCanonicalHost(canonicalHost)
	}
	if maxDepth > 0 {
		builder = builder.WithMaxDepth(maxDepth)
	}
	if maxPages > 0 {
		builder = builder.WithMaxPages(maxPages)
	}
	if concurrency > 0 {
		builder = builder.WithConcurrency(concurrency)
	}
	if rateLimitRPS > 0 {
		builder = builder.WithRateLimitRPS(rateLimitRPS)
	}
	if jsRender {
		builder = builder.WithJSRender(true)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if timeout > 0 {
		builder = builder.WithTimeout(timeout)
	}
	if renderTimeout > 0 {
		builder = builder.WithRenderTimeout(renderTimeout)
	}
	if monthlyTraffic > 0 {
		builder = builder.WithMonthlyTraffic(monthlyTraffic)
	}
	if outputDir != "" {
		builder = builder.WithOutputDir(outputDir)
	}
	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}

	return builder.Build()
}

// ResetFlags restores flag state between test runs.
func ResetFlags() {
	cfgFile = ""
	rootURL = ""
	canonicalHost = ""
	maxDepth = 0
	maxPages = 0
	concurrency = 0
	rateLimitRPS = 0
	jsRender = false
	userAgent = ""
	timeout = 0
	renderTimeout = 0
	monthlyTraffic = 0
	outputDir = ""
	randomSeed = 0
	verbose = false
}
