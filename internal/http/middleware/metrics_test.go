package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetrics_CountsAndRoutePathLabel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/macros/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Two requests to the same route with different raw paths must share
	// the registered route pattern as their label.
	for _, p := range []string{"/macros/1", "/macros/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s -> %d", p, w.Code)
		}
	}

	// Unmatched route falls back to the raw path label.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics -> %d", w.Code)
	}
	body := w.Body.String()

	if !strings.Contains(body, `http_requests_total{method="GET",path="/macros/:id",status="200"} 2`) {
		t.Fatalf("expected counter with route pattern label, got:\n%s", snippet(body, "http_requests_total"))
	}
	if !strings.Contains(body, `path="/nope",status="404"`) {
		t.Fatalf("expected raw-path fallback label, got:\n%s", snippet(body, "http_requests_total"))
	}
	if !strings.Contains(body, "http_request_duration_seconds_bucket") {
		t.Fatalf("expected latency histogram in exposition")
	}
	if !strings.Contains(body, "http_requests_inflight") {
		t.Fatalf("expected inflight gauge in exposition")
	}
}

// snippet returns the exposition lines containing substr, for readable failures.
func snippet(body, substr string) string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if strings.Contains(line, substr) {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
