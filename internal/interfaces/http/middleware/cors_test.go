package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSEngine(cfg CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.POST("/api/generate-script", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestCORSPreflightReturnsEmptyOK(t *testing.T) {
	r := newCORSEngine(CORSConfig{})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-script", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, w.Code)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("body: want empty got=%q", w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin: want=%q got=%q", "*", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("Allow-Credentials: want empty got=%q", got)
	}
}

func TestCORSExplicitOrigins(t *testing.T) {
	r := newCORSEngine(CORSConfig{AllowedOrigins: []string{"https://studio.example.com"}})

	req := httptest.NewRequest(http.MethodPost, "/api/generate-script", nil)
	req.Header.Set("Origin", "https://studio.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=%d got=%d", http.StatusOK, w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://studio.example.com" {
		t.Fatalf("Allow-Origin: want=%q got=%q", "https://studio.example.com", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/generate-script", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin status: want=%d got=%d", http.StatusForbidden, w.Code)
	}
}
