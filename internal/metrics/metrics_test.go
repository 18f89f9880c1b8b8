package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.Requests.WithLabelValues("/analytics/categories", "200").Inc()
	r.Insufficient.WithLabelValues("price_trend").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`insights_http_requests_total{code="200",route="/analytics/categories"} 1`,
		`insights_insufficient_data_total{aggregation="price_trend"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
