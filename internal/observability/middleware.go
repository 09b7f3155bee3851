package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size()).
			Msg("http_request")
	}
}

func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}

// routePath keeps the label set bounded: unmatched requests share one value.
func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}

// NewMetricsRouter serves the default prometheus registry on /metrics.
func NewMetricsRouter(logger zerolog.Logger) *gin.Engine {
	RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetricsMiddleware())
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
