package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"flaggate/internal/service"

	"github.com/gin-gonic/gin"
)

func TestHttpMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HttpMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestTraceMiddleware_SetsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Trace-ID") == "" {
		t.Error("expected X-Trace-ID header to be set")
	}
}

func TestTraceMiddleware_PropagatesIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())

	var got string
	r.GET("/test", func(c *gin.Context) {
		got = service.TraceIDFrom(c.Request.Context())
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Trace-ID", "trace-abc-123")
	r.ServeHTTP(w, req)

	if got != "trace-abc-123" {
		t.Errorf("expected trace id in request context, got %q", got)
	}
	if w.Header().Get("X-Trace-ID") != "trace-abc-123" {
		t.Errorf("expected response header to echo the trace id, got %q", w.Header().Get("X-Trace-ID"))
	}
}
