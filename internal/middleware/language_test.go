package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"docanalyzer/internal/middleware"
)

func TestLanguage(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		acceptLanguage string
		expected       string
	}{
		{"no header defaults to polish", "/test", "", "pl"},
		{"exact match", "/test", "de", "de"},
		{"regional variant", "/test", "en-GB,en;q=0.9", "en"},
		{"weighted preference", "/test", "fr;q=1.0, es;q=0.8", "es"},
		{"unsupported only", "/test", "ja", "pl"},
		{"query override", "/test?lang=uk", "de", "uk"},
		{"bad query falls back to header", "/test?lang=xx", "de", "de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			r := gin.New()
			r.Use(middleware.Language())
			r.GET("/test", func(c *gin.Context) {
				got = middleware.GetLanguage(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, tt.url, http.NoBody)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected, w.Header().Get("Content-Language"))
		})
	}
}

func TestGetLanguage_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "pl", middleware.GetLanguage(c))
}
