package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/billydoc/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORS(cfg))
	router.POST("/api/v1/documents/generate", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func preflight(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents/generate", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type, Idempotency-Key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS_NoOrigins(t *testing.T) {
	router := newCORSRouter(config.CORSConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/generate", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Whitelist(t *testing.T) {
	router := newCORSRouter(config.CORSConfig{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := preflight(router, "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("other origin rejected", func(t *testing.T) {
		w := preflight(router, "http://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORS_Wildcard(t *testing.T) {
	router := newCORSRouter(config.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	})

	w := preflight(router, "http://anything.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
}
