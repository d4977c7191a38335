// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:5173"},
			want:           true,
		},
		{
			name:           "wildcard match",
			origin:         "https://app.example.com",
			allowedOrigins: []string{"https://*"},
			want:           true,
		},
		{
			name:           "matches second entry",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"https://parts.example.com", "http://localhost:5173"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.example.com",
			allowedOrigins: []string{"http://localhost:5173"},
			want:           false,
		},
		{
			name:           "empty origin never matches",
			origin:         "",
			allowedOrigins: []string{"*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{},
			want:           false,
		},
		{
			name:           "bare wildcard matches anything",
			origin:         "http://anywhere.example.com",
			allowedOrigins: []string{"*"},
			want:           true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin(%q, %v) = %v, want %v", tt.origin, tt.allowedOrigins, got, tt.want)
			}
		})
	}
}

func corsRouter(allowed []string) *gin.Engine {
	router := gin.New()
	router.Use(CORSMiddleware(allowed))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestCORSMiddlewareAllowedOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the origin echoed", got)
	}
}

func TestCORSMiddlewareDisallowedOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Request still succeeds; it just gets no CORS headers.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty", got)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	req, _ := http.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("preflight response missing Access-Control-Allow-Methods")
	}
}
