package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/lectio/app/bible"
	"github.com/lysyi3m/lectio/app/cache"
	"github.com/lysyi3m/lectio/app/cfg"
	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/reset"
	"github.com/lysyi3m/lectio/app/usccb"
)

const testKey = "secret-key"

type fakeReadings struct {
	daily       *readings.DailyReadings
	searchErr   error
	versionsErr error
	invalidated []string
}

func (f *fakeReadings) GetTodaysReadings(ctx context.Context) *readings.DailyReadings {
	return f.daily
}

func (f *fakeReadings) GetReadingsForDate(ctx context.Context, date string) (*readings.DailyReadings, error) {
	if _, err := usccb.ParseDate(date); err != nil {
		return nil, err
	}
	out := *f.daily
	out.Date = date
	return &out, nil
}

func (f *fakeReadings) SearchPassages(ctx context.Context, query, bibleID string) (bible.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return bible.SearchResult{}, readings.ErrEmptyQuery
	}
	if f.searchErr != nil {
		return bible.SearchResult{}, f.searchErr
	}
	return bible.SearchResult{
		Query: query,
		Total: 1,
		Verses: []bible.SearchVerse{
			{ID: "JHN.3.16", BibleID: bibleID, Reference: "John 3:16", Text: "For God so loved the world"},
		},
	}, nil
}

func (f *fakeReadings) ListVersions(ctx context.Context) ([]bible.Version, error) {
	if f.versionsErr != nil {
		return nil, f.versionsErr
	}
	return []bible.Version{{ID: bible.DefaultBibleID, Name: "New American Bible", Abbreviation: "NABRE"}}, nil
}

func (f *fakeReadings) CacheStats() cache.Stats {
	return cache.Stats{Hits: 5, Misses: 2, Size: 3}
}

func (f *fakeReadings) Invalidate(date string) int {
	f.invalidated = append(f.invalidated, date)
	return 3
}

type fakeCoordinator struct {
	exists   bool
	resetErr error
	resets   int
}

func (f *fakeCoordinator) PerformDailyReset(ctx context.Context) (*reset.Result, error) {
	f.resets++
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	f.exists = true
	return &reset.Result{Date: "2024-01-01", Readings: sampleReadings(), Stored: true}, nil
}

func (f *fakeCoordinator) CheckTodaysReadings(ctx context.Context) (bool, error) {
	return f.exists, nil
}

func (f *fakeCoordinator) Today() string {
	return "2024-01-01"
}

type fakeReadingRepo struct {
	database.ReadingRepository
	rows []database.Reading
}

func (f *fakeReadingRepo) GetRecentReadings(ctx context.Context, limit int) ([]database.Reading, error) {
	return f.rows, nil
}

func (f *fakeReadingRepo) GetReadingCount(ctx context.Context) (int, error) {
	return len(f.rows), nil
}

func sampleReadings() *readings.DailyReadings {
	return &readings.DailyReadings{
		Date:          "2024-01-01",
		DateLabel:     "January 1, 2024",
		LiturgicalDay: "Solemnity of Mary, the Holy Mother of God",
		Readings: []readings.Reading{
			{Title: "Gospel", Reference: "Luke 2:16-21", Content: "The shepherds went in haste"},
		},
	}
}

type testServer struct {
	engine      http.Handler
	readings    *fakeReadings
	coordinator *fakeCoordinator
	repo        *fakeReadingRepo
}

func setupTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	t.Chdir(t.TempDir())

	_, err := cfg.LoadArgs([]string{"--port", "8080"})
	require.NoError(t, err)

	ts := &testServer{
		readings:    &fakeReadings{daily: sampleReadings()},
		coordinator: &fakeCoordinator{},
		repo:        &fakeReadingRepo{},
	}
	ts.engine = NewServer(NewHandler(ts.readings, ts.coordinator, ts.repo), apiKey)

	return ts
}

func (ts *testServer) do(t *testing.T, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()

	var body testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestGetTodaysReadings(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodGet, "/api/readings/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.True(t, body.Success)

	var daily readings.DailyReadings
	require.NoError(t, json.Unmarshal(body.Data, &daily))
	assert.Equal(t, "2024-01-01", daily.Date)
	assert.Equal(t, "Solemnity of Mary, the Holy Mother of God", daily.LiturgicalDay)
	assert.Len(t, daily.Readings, 1)
}

func TestGetTodaysReadingsUnavailable(t *testing.T) {
	ts := setupTestServer(t, "")
	ts.readings.daily = &readings.DailyReadings{
		Date:          "2024-01-01",
		LiturgicalDay: readings.UnavailableDay,
		Readings:      []readings.Reading{},
		Error:         readings.UnavailableReason,
	}

	rec := ts.do(t, http.MethodGet, "/api/readings/today", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"readings":[]`)
	assert.Contains(t, string(body.Data), readings.UnavailableReason)
}

func TestGetReadingsForDate(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodGet, "/api/readings/date/2024-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2024-03-31"`)

	for _, bad := range []string{"2024-3-31", "yesterday", "2024-02-30"} {
		rec = ts.do(t, http.MethodGet, "/api/readings/date/"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)

		body := decode(t, rec)
		assert.False(t, body.Success)
		assert.Equal(t, "Invalid date format. Use YYYY-MM-DD.", body.Error)
	}
}

func TestSearchPassages(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodGet, "/api/readings/search?q=loved&bibleId=abc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "John 3:16")

	rec = ts.do(t, http.MethodGet, "/api/readings/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Search query is required", decode(t, rec).Error)

	ts.readings.searchErr = errors.New("upstream down")
	rec = ts.do(t, http.MethodGet, "/api/readings/search?q=loved", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, decode(t, rec).Success)
}

func TestListVersions(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodGet, "/api/readings/versions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NABRE")

	ts.readings.versionsErr = bible.ErrEnrichmentUnavailable
	rec = ts.do(t, http.MethodGet, "/api/readings/versions", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch Bible versions", decode(t, rec).Error)
}

func TestProtectedRoutesDisabledWithoutKey(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodPost, "/api/reset/daily", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, ts.coordinator.resets)
}

func TestAuthMiddleware(t *testing.T) {
	ts := setupTestServer(t, testKey)

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": testKey}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer " + testKey}, http.StatusOK},
		{"non-bearer auth", map[string]string{"Authorization": "Basic " + testKey}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/reset/status", tt.headers)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPerformDailyReset(t *testing.T) {
	ts := setupTestServer(t, testKey)
	auth := map[string]string{"X-API-Key": testKey}

	rec := ts.do(t, http.MethodGet, "/api/reset/status", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-01-01","hasReadings":false}`, string(decode(t, rec).Data))

	rec = ts.do(t, http.MethodPost, "/api/reset/daily", auth)
	require.Equal(t, http.StatusOK, rec.Code)

	var result reset.Result
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, "2024-01-01", result.Date)
	assert.True(t, result.Stored)

	rec = ts.do(t, http.MethodGet, "/api/reset/status", auth)
	assert.JSONEq(t, `{"date":"2024-01-01","hasReadings":true}`, string(decode(t, rec).Data))

	ts.coordinator.resetErr = errors.New("database is locked")
	rec = ts.do(t, http.MethodPost, "/api/reset/daily", auth)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to perform daily reset", decode(t, rec).Error)
}

func TestInvalidateReadings(t *testing.T) {
	ts := setupTestServer(t, testKey)
	auth := map[string]string{"X-API-Key": testKey}

	rec := ts.do(t, http.MethodPost, "/api/readings/invalidate?date=2024-01-01", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2024-01-01","removed":3}`, string(decode(t, rec).Data))

	rec = ts.do(t, http.MethodPost, "/api/readings/invalidate", auth)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/readings/invalidate?date=01-01-2024", auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/readings/invalidate?date=2024-01-01", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, []string{"2024-01-01", ""}, ts.readings.invalidated)
}

func TestGetFeed(t *testing.T) {
	ts := setupTestServer(t, "")

	body, err := json.Marshal(sampleReadings())
	require.NoError(t, err)

	ts.repo.rows = []database.Reading{{
		ID:        "row-1",
		Date:      "2024-01-01",
		Title:     "Solemnity of Mary, the Holy Mother of God",
		Content:   string(body),
		Source:    readings.SourcePrimary,
		CreatedAt: time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC),
	}}

	rec := ts.do(t, http.MethodGet, "/feeds/readings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("X-Feed-Items"))
	assert.Equal(t, "2024-01-01T05:00:00Z", rec.Header().Get("X-Last-Updated"))
	assert.Contains(t, rec.Body.String(), "<title>Solemnity of Mary, the Holy Mother of God (January 1, 2024)</title>")
}

func TestGetHealth(t *testing.T) {
	ts := setupTestServer(t, "")
	ts.coordinator.exists = true

	rec := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "2024-01-01", health["date"])
	assert.Equal(t, float64(0), health["stored_readings"])
	assert.Equal(t, true, health["todays_readings"])
	assert.Equal(t, map[string]any{
		"entries": float64(3),
		"hits":    float64(5),
		"misses":  float64(2),
		"expired": float64(0),
	}, health["cache"])
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t, "")

	rec := ts.do(t, http.MethodOptions, "/api/readings/today", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
