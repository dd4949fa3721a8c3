package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	// Test that version is at least "dev" or "unknown"
	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.Sources.Bible.DefaultBibleID != "9879dbb7cfe39e4d-01" {
		t.Errorf("Expected NABRE bible id, got '%s'", cfg.Sources.Bible.DefaultBibleID)
	}
	if cfg.Sources.Bible.FallbackPassage != "JHN.3.16" {
		t.Errorf("Expected fallback passage 'JHN.3.16', got '%s'", cfg.Sources.Bible.FallbackPassage)
	}
	if cfg.Sources.Cache.GetReadingsTTL() != 24*time.Hour {
		t.Errorf("Expected readings TTL 24h, got %v", cfg.Sources.Cache.GetReadingsTTL())
	}
	if cfg.Sources.Cache.GetEnrichmentTTL() != 7*24*time.Hour {
		t.Errorf("Expected enrichment TTL one week, got %v", cfg.Sources.Cache.GetEnrichmentTTL())
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadArgsFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadArgs([]string{"--port", "9090", "--default-bible-id", "de4e12af7f28f599-02", "--timeout", "5"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.Sources.Bible.DefaultBibleID != "de4e12af7f28f599-02" {
		t.Errorf("Expected bible id 'de4e12af7f28f599-02', got '%s'", cfg.Sources.Bible.DefaultBibleID)
	}
	if cfg.Sources.USCCB.GetTimeout() != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.Sources.USCCB.GetTimeout())
	}
}

func TestLoadArgsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("API_BIBLE_KEY=from-dotenv\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("API_BIBLE_KEY") })

	cfg, err := LoadArgs([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BibleAPIKey != "from-dotenv" {
		t.Errorf("Expected bible API key 'from-dotenv', got '%s'", cfg.BibleAPIKey)
	}
}

func TestLoadArgsWithSourcesFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
usccb:
  url: "https://usccb.example.com"
bible:
  default_bible_id: "custom-01"
cache:
  readings_ttl: 3600
`
	path := filepath.Join(dir, "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadArgs([]string{"--sources-file", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Sources.USCCB.URL != "https://usccb.example.com" {
		t.Errorf("Expected USCCB URL override, got '%s'", cfg.Sources.USCCB.URL)
	}
	if cfg.Sources.Bible.URL != "https://api.scripture.api.bible/v1" {
		t.Errorf("Expected bible URL to keep flag default, got '%s'", cfg.Sources.Bible.URL)
	}
	if cfg.Sources.Bible.DefaultBibleID != "custom-01" {
		t.Errorf("Expected bible id 'custom-01', got '%s'", cfg.Sources.Bible.DefaultBibleID)
	}
	if cfg.Sources.Cache.GetReadingsTTL() != time.Hour {
		t.Errorf("Expected readings TTL 1h, got %v", cfg.Sources.Cache.GetReadingsTTL())
	}
	if cfg.Sources.Cache.GetEnrichmentTTL() != 7*24*time.Hour {
		t.Errorf("Expected default enrichment TTL, got %v", cfg.Sources.Cache.GetEnrichmentTTL())
	}
}

func TestLoadSourcesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "non http url",
			content: `
usccb:
  url: "ftp://usccb.example.com"
`,
		},
		{
			name: "negative ttl",
			content: `
cache:
  enrichment_ttl: -1
`,
		},
		{
			name:    "malformed yaml",
			content: "usccb: [",
		},
	}

	base := DefaultSources(rawCfg{
		USCCBURL:       "https://bible.usccb.org",
		BibleAPIURL:    "https://api.scripture.api.bible/v1",
		DefaultBibleID: "9879dbb7cfe39e4d-01",
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sources.yml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			if _, err := LoadSources(path, base); err == nil {
				t.Error("Expected error for invalid sources file")
			}
		})
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	_, err := LoadSources(filepath.Join(t.TempDir(), "missing.yml"), Sources{})
	if err == nil {
		t.Error("Expected error for missing sources file")
	}
}
