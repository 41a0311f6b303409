package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scholarstream/escrow/business/sys/metrics"
)

func Test_Handler(t *testing.T) {
	m := metrics.New("escrow")

	m.Request("/v1/scholarships", http.MethodPost, http.StatusCreated, 20*time.Millisecond)
	m.Operation("create", "ok")
	m.Error("/v1/scholarships")
	m.Panic()

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("Should serve the metrics: got status %d", w.Code)
	}

	body := w.Body.String()
	for _, exp := range []string{
		`escrow_requests_total{method="POST",route="/v1/scholarships",status="201"} 1`,
		`escrow_operations_total{operation="create",outcome="ok"} 1`,
		`escrow_errors_total{route="/v1/scholarships"} 1`,
		`escrow_panics_total 1`,
	} {
		if !strings.Contains(body, exp) {
			t.Errorf("Should expose %q", exp)
		}
	}
}
