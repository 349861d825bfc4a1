package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSearchCollectors_Record(t *testing.T) {
	before := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("hybrid", "completed"))
	SearchRequestsTotal.WithLabelValues("hybrid", "completed").Inc()
	after := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("hybrid", "completed"))
	if after != before+1 {
		t.Errorf("search_requests_total: got %f, want %f", after, before+1)
	}

	VectorAvailable.Set(1)
	if v := testutil.ToFloat64(VectorAvailable); v != 1 {
		t.Errorf("vector_available = %f, want 1", v)
	}
	VectorAvailable.Set(0)
	if v := testutil.ToFloat64(VectorAvailable); v != 0 {
		t.Errorf("vector_available = %f, want 0", v)
	}
}

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()
	if !searchMetricsRegistered {
		t.Error("expected metrics to be registered")
	}
}
