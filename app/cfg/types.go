package cfg

type Cfg struct {
	// Storage configuration
	DataDir string

	// Source registry
	SourcesFile string

	// Fetch configuration
	FetchConcurrency   int
	PerHostConcurrency int
	FetchTimeout       int // seconds
	UserAgent          string
	ExtractContent     bool

	// Pipeline configuration
	FreshnessHorizon    int     // hours
	SimilarityThreshold float64 // content-similarity dedup cutoff
	URLThreshold        float64 // URL dedup pass cutoff
	PipelineInterval    int     // seconds between scheduled runs
	CleanupInterval     int     // seconds between store cleanups

	// HTTP server
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
