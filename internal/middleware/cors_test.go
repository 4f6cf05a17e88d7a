package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupRouter(middleware gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware)
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	return req
}

func TestCORS_DefaultConfig_SetsHeaders(t *testing.T) {
	r := setupRouter(CORS())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID, Retry-After" {
		t.Errorf("Access-Control-Expose-Headers = %q", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("Vary = %q, want %q", got, "Origin")
	}
}

func TestCORS_PreflightOptions_Returns204(t *testing.T) {
	r := setupRouter(CORS())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight("http://example.com"))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected Access-Control-Allow-Methods on preflight")
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "43200" {
		t.Errorf("Access-Control-Max-Age = %q, want %q", got, "43200")
	}
}

func TestCORS_NoOriginHeader_SkipsCORSHeaders(t *testing.T) {
	r := setupRouter(CORS())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Origin, got %q", got)
	}
}

func TestCORS_WithConfig_SpecificOrigins_Allowed(t *testing.T) {
	r := setupRouter(CORSWithConfig(CORSConfig{
		AllowOrigins: []string{"https://blog.example.com"},
		MaxAge:       time.Hour,
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight("https://BLOG.example.com"))

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://BLOG.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Max-Age"); got != "3600" {
		t.Errorf("Access-Control-Max-Age = %q, want %q", got, "3600")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("empty AllowHeaders should fall back to the defaults")
	}
}

func TestCORS_WithConfig_SpecificOrigins_Denied(t *testing.T) {
	r := setupRouter(CORSWithConfig(CORSConfig{
		AllowOrigins: []string{"https://blog.example.com"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Origin, got %q", got)
	}
}

func TestCORS_WithConfig_EmptyAllowOrigins_Denied(t *testing.T) {
	r := setupRouter(CORSWithConfig(CORSConfig{AllowOrigins: []string{}}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, preflight("http://example.com"))

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no Access-Control-Allow-Origin, got %q", got)
	}
	if w.Code == http.StatusNoContent {
		t.Error("denied preflight should not be answered with 204")
	}
}

func TestCORS_WithCredentials_EchosOrigin(t *testing.T) {
	r := setupRouter(CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q, want echoed origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Access-Control-Allow-Credentials = %q, want %q", got, "true")
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://a.example.com", "https://b.example.com"}

	if !originAllowed(allowed, "https://a.example.com") {
		t.Error("expected a.example.com to be allowed")
	}
	if !originAllowed(allowed, "HTTPS://B.EXAMPLE.COM") {
		t.Error("expected case-insensitive match")
	}
	if originAllowed(allowed, "https://c.example.com") {
		t.Error("expected c.example.com to be denied")
	}
	if !originAllowed([]string{"*"}, "https://anything") {
		t.Error("expected wildcard to allow any origin")
	}
}
