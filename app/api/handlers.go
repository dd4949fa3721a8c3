package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/lectio/app/database"
	"github.com/lysyi3m/lectio/app/feed"
	"github.com/lysyi3m/lectio/app/readings"
	"github.com/lysyi3m/lectio/app/usccb"
)

func NewHandler(readingsService ReadingsServiceInterface, coordinator ResetCoordinatorInterface,
	readingRepo database.ReadingRepository) *Handler {
	return &Handler{
		readings:    readingsService,
		coordinator: coordinator,
		readingRepo: readingRepo,
		generator:   feed.NewGenerator(),
	}
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Error: message})
}

// GetTodaysReadings answers 200 even when no source could be reached; the
// readings then carry an error field instead of passages.
func (h *Handler) GetTodaysReadings(c *gin.Context) {
	ok(c, h.readings.GetTodaysReadings(c.Request.Context()))
}

func (h *Handler) GetReadingsForDate(c *gin.Context) {
	date := c.Param("date")

	daily, err := h.readings.GetReadingsForDate(c.Request.Context(), date)
	if err != nil {
		if errors.Is(err, readings.ErrInvalidDate) {
			fail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
			return
		}
		slog.Error("Failed to fetch readings", "date", date, "error", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch readings")
		return
	}

	ok(c, daily)
}

func (h *Handler) SearchPassages(c *gin.Context) {
	query := c.Query("q")
	bibleID := c.Query("bibleId")

	result, err := h.readings.SearchPassages(c.Request.Context(), query, bibleID)
	if err != nil {
		if errors.Is(err, readings.ErrEmptyQuery) {
			fail(c, http.StatusBadRequest, "Search query is required")
			return
		}
		slog.Error("Failed to search passages", "query", query, "bible_id", bibleID, "error", err)
		fail(c, http.StatusInternalServerError, "Failed to search Bible passages")
		return
	}

	ok(c, result)
}

func (h *Handler) ListVersions(c *gin.Context) {
	versions, err := h.readings.ListVersions(c.Request.Context())
	if err != nil {
		slog.Error("Failed to fetch Bible versions", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch Bible versions")
		return
	}

	ok(c, versions)
}

func (h *Handler) InvalidateReadings(c *gin.Context) {
	date := c.Query("date")
	if date != "" {
		if _, err := usccb.ParseDate(date); err != nil {
			fail(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
			return
		}
	}

	removed := h.readings.Invalidate(date)

	ok(c, gin.H{
		"date":    date,
		"removed": removed,
	})
}

func (h *Handler) PerformDailyReset(c *gin.Context) {
	result, err := h.coordinator.PerformDailyReset(c.Request.Context())
	if err != nil {
		slog.Error("Daily reset failed", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to perform daily reset")
		return
	}

	ok(c, result)
}

func (h *Handler) GetResetStatus(c *gin.Context) {
	exists, err := h.coordinator.CheckTodaysReadings(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "check_todays_readings", "error", err)
		fail(c, http.StatusInternalServerError, "Failed to check reset status")
		return
	}

	ok(c, gin.H{
		"date":        h.coordinator.Today(),
		"hasReadings": exists,
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	rows, err := h.readingRepo.GetRecentReadings(c.Request.Context(), feedItemLimit)
	if err != nil {
		slog.Error("Database error", "operation", "get_recent_readings", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.generator.Run(rows)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(rows)))
	if len(rows) > 0 {
		c.Header("X-Last-Updated", rows[0].CreatedAt.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"date":      h.coordinator.Today(),
	}

	if count, err := h.readingRepo.GetReadingCount(c.Request.Context()); err == nil {
		health["stored_readings"] = count
	}

	if exists, err := h.coordinator.CheckTodaysReadings(c.Request.Context()); err == nil {
		health["todays_readings"] = exists
	}

	stats := h.readings.CacheStats()
	health["cache"] = map[string]interface{}{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"expired": stats.Expired,
	}

	c.JSON(http.StatusOK, health)
}
