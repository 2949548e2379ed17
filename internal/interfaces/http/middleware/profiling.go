package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/billydoc/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// ProfilingConfig selects which requests get profiler labels
type ProfilingConfig struct {
	Enabled bool
	// SkipPaths match exactly, SkipPathPrefixes by prefix
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health checks and the swagger UI
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/api/v1/health", "/api/v1/system/ping"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

func (cfg ProfilingConfig) skips(path string) bool {
	if slices.Contains(cfg.SkipPaths, path) {
		return true
	}
	return slices.ContainsFunc(cfg.SkipPathPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

// Profiling labels requests with DefaultProfilingConfig
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig labels the CPU samples of each request with its route
// pattern and method, so PDF rendering shows up per endpoint.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passThrough
	}
	return func(c *gin.Context) {
		if cfg.skips(c.Request.URL.Path) {
			c.Next()
			return
		}
		labels := telemetry.HTTPRequestLabels(c.FullPath(), c.Request.Method)
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
