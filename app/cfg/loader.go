package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/lectio.db" description:"Path to the sqlite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://readings.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler tick interval in seconds"`
	ResetInterval     int    `long:"reset-interval" env:"RESET_INTERVAL" default:"3600" description:"Interval between daily reset triggers in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for protected endpoints (optional)"`

	// Upstream configuration
	BibleAPIKey    string `long:"bible-api-key" env:"API_BIBLE_KEY" description:"API.Bible key"`
	BibleAPIURL    string `long:"bible-api-url" env:"API_BIBLE_URL" default:"https://api.scripture.api.bible/v1" description:"API.Bible base URL"`
	DefaultBibleID string `long:"default-bible-id" env:"DEFAULT_BIBLE_ID" default:"9879dbb7cfe39e4d-01" description:"Bible version used for enrichment (NABRE)"`
	USCCBURL       string `long:"usccb-url" env:"USCCB_URL" default:"https://bible.usccb.org" description:"USCCB base URL"`
	Timeout        int    `long:"timeout" env:"UPSTREAM_TIMEOUT" default:"30" description:"Upstream request timeout in seconds"`
	SourcesFile    string `long:"sources-file" env:"SOURCES_FILE" description:"Optional YAML file overriding upstream settings"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Lectio/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded .env")
	}

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		ResetInterval:     raw.ResetInterval,
		APIAccessKey:      raw.APIAccessKey,
		BibleAPIKey:       raw.BibleAPIKey,
		SourcesFile:       raw.SourcesFile,
		Sources:           DefaultSources(raw),
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if cfg.SourcesFile != "" {
		sources, err := LoadSources(cfg.SourcesFile, cfg.Sources)
		if err != nil {
			return nil, err
		}
		cfg.Sources = *sources
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

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
