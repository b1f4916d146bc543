package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestHTTPMetricsMiddlewareRecordsRequests(t *testing.T) {
	m := NewHTTPMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware())
	r.Get("/leads/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/leads/abc", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := scrape.Body.String()
	if !strings.Contains(body, "leadpilot_http_requests_total") {
		t.Fatalf("expected request counter in scrape output:\n%s", body)
	}
	if !strings.Contains(body, `route="/leads/{id}"`) {
		t.Errorf("expected the chi route pattern as label, got:\n%s", body)
	}
	if !strings.Contains(body, `status="200"`) {
		t.Errorf("expected status label 200, got:\n%s", body)
	}
}

func TestHTTPMetricsIsolatedRegistry(t *testing.T) {
	// Two instances must not collide on registration.
	_ = NewHTTPMetrics()
	_ = NewHTTPMetrics()
}
