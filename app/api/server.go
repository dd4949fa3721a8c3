package api

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/lectio/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/feeds/readings", handler.GetFeed)
	r.GET("/health", handler.GetHealth)

	readings := r.Group("/api/readings")
	{
		readings.GET("/today", handler.GetTodaysReadings)
		readings.GET("/date/:date", handler.GetReadingsForDate)
		readings.GET("/search", handler.SearchPassages)
		readings.GET("/versions", handler.ListVersions)
	}

	if apiAccessKey != "" {
		readings.POST("/invalidate", authMiddleware(apiAccessKey), handler.InvalidateReadings)

		reset := r.Group("/api/reset")
		reset.Use(authMiddleware(apiAccessKey))
		{
			reset.POST("/daily", handler.PerformDailyReset)
			reset.GET("/status", handler.GetResetStatus)
		}
		slog.Info("Protected API endpoints enabled")
	} else {
		slog.Warn("Protected API endpoints disabled", "reason", "API_ACCESS_KEY not set")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"today":    "/api/readings/today",
			"date":     "/api/readings/date/<YYYY-MM-DD>",
			"search":   "/api/readings/search?q=<query>&bibleId=<id>",
			"versions": "/api/readings/versions",
			"feed":     "/feeds/readings",
			"health":   "/health",
		}

		if apiAccessKey != "" {
			endpoints["invalidate"] = "/api/readings/invalidate?date=<YYYY-MM-DD> (POST, requires X-API-Key header)"
			endpoints["reset"] = "/api/reset/daily (POST, requires X-API-Key header)"
			endpoints["status"] = "/api/reset/status (requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Lectio",
			"version":     cfg.Get().Version,
			"description": "Daily Mass readings with API.Bible translations",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware accepts the key in X-API-Key or as an Authorization bearer token.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success: false,
				Error:   "API key required",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiAccessKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{
				Success: false,
				Error:   "Invalid API key",
			})
			return
		}

		c.Next()
	}
}
