package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	ResetInterval     int
	APIAccessKey      string

	// Upstream configuration
	BibleAPIKey string
	SourcesFile string
	Sources     Sources

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// Sources describes the two upstream providers and the cache lifetimes applied
// to their responses. It can be overridden by a YAML file.
type Sources struct {
	USCCB USCCBSource   `yaml:"usccb"`
	Bible BibleSource   `yaml:"bible"`
	Cache CacheSettings `yaml:"cache"`
}

type USCCBSource struct {
	URL     string `yaml:"url"`
	Timeout int    `yaml:"timeout"` // seconds
}

type BibleSource struct {
	URL               string `yaml:"url"`
	DefaultBibleID    string `yaml:"default_bible_id"`
	FallbackPassage   string `yaml:"fallback_passage"`
	FallbackReference string `yaml:"fallback_reference"`
	Timeout           int    `yaml:"timeout"` // seconds
}

type CacheSettings struct {
	ReadingsTTL   int `yaml:"readings_ttl"`   // seconds
	EnrichmentTTL int `yaml:"enrichment_ttl"` // seconds
}
