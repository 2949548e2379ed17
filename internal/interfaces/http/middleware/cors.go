package middleware

import (
	"slices"
	"time"

	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry document generation safely
const IdempotencyKeyHeader = "Idempotency-Key"

// CORS builds the cross-origin middleware. With no configured origins,
// cross-origin requests get no CORS headers.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if slices.Contains(cfg.AllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if !slices.Contains(corsConfig.AllowHeaders, IdempotencyKeyHeader) {
		corsConfig.AllowHeaders = append(slices.Clone(corsConfig.AllowHeaders), IdempotencyKeyHeader)
	}
	if corsConfig.MaxAge == 0 {
		corsConfig.MaxAge = 12 * time.Hour
	}
	return cors.New(corsConfig)
}
