package usccb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lysyi3m/lectio/app/cache"
)

const (
	cachePrefix = "readings_"
	defaultTTL  = 24 * time.Hour
)

type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	TTL       time.Duration
}

// Source fetches liturgical-day pages and caches the parsed documents per date.
type Source struct {
	httpClient *http.Client
	parser     *Parser
	cache      cache.Store
	baseURL    string
	userAgent  string
	timeout    time.Duration
	ttl        time.Duration
	now        func() time.Time
}

func NewSource(httpClient *http.Client, parser *Parser, store cache.Store, opts Options) *Source {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Source{
		httpClient: httpClient,
		parser:     parser,
		cache:      store,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		ttl:        opts.TTL,
		now:        time.Now,
	}
}

// FetchDefault fetches the page for today's UTC date.
func (s *Source) FetchDefault(ctx context.Context) (*Document, error) {
	return s.FetchForDate(ctx, FormatDate(s.now()))
}

func (s *Source) FetchForDate(ctx context.Context, date string) (*Document, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}

	key := cachePrefix + date
	if doc, ok := cache.Lookup[Document](s.cache, key); ok {
		slog.Debug("Readings cache hit", "date", date)
		out := doc.clone()
		return &out, nil
	}

	data, err := s.fetchPage(ctx, s.DateURL(day))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	doc, err := s.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	s.cache.Set(key, doc.clone(), s.ttl)

	slog.Debug("Readings fetched", "date", date, "readings", len(doc.Readings))

	return doc, nil
}

// Invalidate drops the cached page for date, or every cached page when date
// is empty. It returns the number of entries removed.
func (s *Source) Invalidate(date string) int {
	if date == "" {
		return s.cache.DeletePrefix(cachePrefix)
	}
	if s.cache.Delete(cachePrefix + date) {
		return 1
	}
	return 0
}

// DateURL builds the page address for a date, e.g. <base>/bible/readings/20240101.cfm.
func (s *Source) DateURL(day time.Time) string {
	return fmt.Sprintf("%s/bible/readings/%s.cfm", s.baseURL, day.Format("20060102"))
}

func (s *Source) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
