package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/courtsec/courtsec/internal/metrics"
	"github.com/courtsec/courtsec/internal/middleware"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("reading counter: %v", err)
	}

	return m.GetCounter().GetValue()
}

func TestPrometheusMiddleware_Labels(t *testing.T) {
	r := gin.New()
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/api/v1/incidents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		route  string
		status string
	}{
		{name: "route pattern", path: "/api/v1/incidents/5c0ffee0", route: "/api/v1/incidents/:id", status: "200"},
		{name: "no route", path: "/wp-login.php", route: "unmatched", status: "404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.RequestsTotal.WithLabelValues(http.MethodGet, tt.route, tt.status)
			before := counterValue(t, counter)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if got := counterValue(t, counter) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}
