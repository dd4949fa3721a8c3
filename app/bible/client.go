// Package bible is a cached client for the API.Bible v1 service.
package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/lectio/app/cache"
	"github.com/lysyi3m/lectio/app/scripture"
)

const (
	DefaultBaseURL = "https://api.scripture.api.bible/v1"

	// NABRE, the translation used by the USCCB lectionary.
	DefaultBibleID = "9879dbb7cfe39e4d-01"

	searchLimit = 20
	defaultTTL  = 7 * 24 * time.Hour
	maxErrBody  = 4096

	versionsKey   = "bible_versions"
	passagePrefix = "passage_"
	chapterPrefix = "chapter_"
	booksPrefix   = "books_"
	searchPrefix  = "search_"
)

type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	TTL       time.Duration
}

type Client struct {
	httpClient *http.Client
	cache      cache.Store
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	ttl        time.Duration
}

func NewClient(httpClient *http.Client, store cache.Store, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		cache:      store,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		ttl:        opts.TTL,
	}
}

func textParams() url.Values {
	return url.Values{
		"content-type":            {"text"},
		"include-notes":           {"false"},
		"include-titles":          {"true"},
		"include-chapter-numbers": {"true"},
		"include-verse-numbers":   {"true"},
	}
}

func (c *Client) Versions(ctx context.Context) ([]Version, error) {
	return lookup[[]Version](ctx, c, versionsKey, "/bibles", nil)
}

func (c *Client) Passage(ctx context.Context, bibleID string, key scripture.PassageKey) (Passage, error) {
	path := "/bibles/" + url.PathEscape(bibleID) + "/passages/" + url.PathEscape(key.String())
	return lookup[Passage](ctx, c, passageKey(bibleID, key), path, textParams())
}

func (c *Client) Chapter(ctx context.Context, bibleID, chapterID string) (Chapter, error) {
	path := "/bibles/" + url.PathEscape(bibleID) + "/chapters/" + url.PathEscape(chapterID)
	return lookup[Chapter](ctx, c, chapterPrefix+bibleID+"_"+chapterID, path, textParams())
}

func (c *Client) Books(ctx context.Context, bibleID string) ([]Book, error) {
	path := "/bibles/" + url.PathEscape(bibleID) + "/books"
	return lookup[[]Book](ctx, c, booksPrefix+bibleID, path, nil)
}

func (c *Client) Search(ctx context.Context, bibleID, query string) (SearchResult, error) {
	path := "/bibles/" + url.PathEscape(bibleID) + "/search"
	params := url.Values{
		"query": {query},
		"limit": {strconv.Itoa(searchLimit)},
		"sort":  {"relevance"},
	}
	return lookup[SearchResult](ctx, c, searchPrefix+bibleID+"_"+query, path, params)
}

// Invalidate flushes every enrichment namespace and returns the number of
// entries removed.
func (c *Client) Invalidate() int {
	removed := 0
	if c.cache.Delete(versionsKey) {
		removed++
	}
	for _, prefix := range []string{passagePrefix, chapterPrefix, booksPrefix, searchPrefix} {
		removed += c.cache.DeletePrefix(prefix)
	}
	return removed
}

// InvalidatePassage drops a single cached passage.
func (c *Client) InvalidatePassage(bibleID string, key scripture.PassageKey) bool {
	return c.cache.Delete(passageKey(bibleID, key))
}

func passageKey(bibleID string, key scripture.PassageKey) string {
	return passagePrefix + bibleID + "_" + key.String()
}

// lookup serves key from the cache or fetches path, decodes the data envelope
// and caches the payload. Failures are never cached.
func lookup[T any](ctx context.Context, c *Client, key, path string, params url.Values) (T, error) {
	if v, ok := cache.Lookup[T](c.cache, key); ok {
		slog.Debug("Enrichment cache hit", "key", key)
		return v, nil
	}

	var env envelope[T]
	if err := c.get(ctx, path, params, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrEnrichmentUnavailable, err)
	}

	c.cache.Set(key, env.Data, c.ttl)
	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
