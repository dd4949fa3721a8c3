package cfg

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFallbackPassage   = "JHN.3.16"
	defaultFallbackReference = "John 3:16"
	defaultReadingsTTL       = 86400  // one day
	defaultEnrichmentTTL     = 604800 // one week
)

func DefaultSources(raw rawCfg) Sources {
	return Sources{
		USCCB: USCCBSource{
			URL:     raw.USCCBURL,
			Timeout: raw.Timeout,
		},
		Bible: BibleSource{
			URL:               raw.BibleAPIURL,
			DefaultBibleID:    raw.DefaultBibleID,
			FallbackPassage:   defaultFallbackPassage,
			FallbackReference: defaultFallbackReference,
			Timeout:           raw.Timeout,
		},
		Cache: CacheSettings{
			ReadingsTTL:   defaultReadingsTTL,
			EnrichmentTTL: defaultEnrichmentTTL,
		},
	}
}

// LoadSources reads a YAML sources file on top of base. Keys absent from the
// file keep the values from base.
func LoadSources(path string, base Sources) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	sources := base
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setSourceDefaults(&sources)

	if err := validateSources(&sources); err != nil {
		return nil, fmt.Errorf("invalid sources file %s: %w", path, err)
	}

	return &sources, nil
}

func setSourceDefaults(s *Sources) {
	if s.USCCB.Timeout == 0 {
		s.USCCB.Timeout = 30
	}
	if s.Bible.Timeout == 0 {
		s.Bible.Timeout = 30
	}
	if s.Bible.FallbackPassage == "" {
		s.Bible.FallbackPassage = defaultFallbackPassage
		s.Bible.FallbackReference = defaultFallbackReference
	}
	if s.Cache.ReadingsTTL == 0 {
		s.Cache.ReadingsTTL = defaultReadingsTTL
	}
	if s.Cache.EnrichmentTTL == 0 {
		s.Cache.EnrichmentTTL = defaultEnrichmentTTL
	}
}

func validateSources(s *Sources) error {
	requiredFields := map[string]string{
		"usccb url":        s.USCCB.URL,
		"bible url":        s.Bible.URL,
		"default bible id": s.Bible.DefaultBibleID,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	urlFields := map[string]string{
		"usccb url": s.USCCB.URL,
		"bible url": s.Bible.URL,
	}

	for fieldName, fieldValue := range urlFields {
		if !strings.HasPrefix(fieldValue, "http://") && !strings.HasPrefix(fieldValue, "https://") {
			return fmt.Errorf("%s must be an http(s) URL", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"usccb timeout":  s.USCCB.Timeout,
		"bible timeout":  s.Bible.Timeout,
		"readings ttl":   s.Cache.ReadingsTTL,
		"enrichment ttl": s.Cache.EnrichmentTTL,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

func (s USCCBSource) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

func (s BibleSource) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

func (c CacheSettings) GetReadingsTTL() time.Duration {
	if c.ReadingsTTL <= 0 {
		return defaultReadingsTTL * time.Second
	}
	return time.Duration(c.ReadingsTTL) * time.Second
}

func (c CacheSettings) GetEnrichmentTTL() time.Duration {
	if c.EnrichmentTTL <= 0 {
		return defaultEnrichmentTTL * time.Second
	}
	return time.Duration(c.EnrichmentTTL) * time.Second
}
