package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DataDir string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the article store and backups"`

	// Source registry
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" description:"YAML file with feed sources (built-in registry used when empty)"`

	// Fetch configuration
	FetchConcurrency   int    `long:"fetch-concurrency" env:"FETCH_CONCURRENCY" default:"20" description:"Maximum number of in-flight feed requests"`
	PerHostConcurrency int    `long:"per-host-concurrency" env:"PER_HOST_CONCURRENCY" default:"3" description:"Maximum concurrent requests per host"`
	FetchTimeout       int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"15" description:"Per-request timeout in seconds"`
	UserAgent          string `long:"user-agent" env:"USER_AGENT" default:"Sportwire/1.0" description:"User agent string for HTTP requests"`
	ExtractContent     bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch article pages to enrich thin summaries"`

	// Pipeline configuration
	FreshnessHorizon    int     `long:"freshness-horizon" env:"FRESHNESS_HORIZON" default:"24" description:"Article freshness horizon in hours"`
	SimilarityThreshold float64 `long:"similarity-threshold" env:"SIMILARITY_THRESHOLD" default:"0.75" description:"Content similarity threshold for deduplication"`
	URLThreshold        float64 `long:"url-threshold" env:"URL_THRESHOLD" default:"0.85" description:"URL similarity threshold for deduplication"`
	PipelineInterval    int     `long:"pipeline-interval" env:"PIPELINE_INTERVAL" default:"1800" description:"Seconds between scheduled pipeline runs"`
	CleanupInterval     int     `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"3600" description:"Seconds between store freshness cleanups"`

	// HTTP server
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Display timezone for timestamps (e.g., UTC, Asia/Kolkata)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DataDir:             raw.DataDir,
		SourcesFile:         raw.SourcesFile,
		FetchConcurrency:    raw.FetchConcurrency,
		PerHostConcurrency:  raw.PerHostConcurrency,
		FetchTimeout:        raw.FetchTimeout,
		UserAgent:           raw.UserAgent,
		ExtractContent:      raw.ExtractContent,
		FreshnessHorizon:    raw.FreshnessHorizon,
		SimilarityThreshold: raw.SimilarityThreshold,
		URLThreshold:        raw.URLThreshold,
		PipelineInterval:    raw.PipelineInterval,
		CleanupInterval:     raw.CleanupInterval,
		Port:                raw.Port,
		APIAccessKey:        raw.APIAccessKey,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// applyTimezone sets the process-local display timezone. Article
// freshness checks and rendered timestamps use time.Local.
func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
