package metrics_test

import (
	"testing"

	"github.com/bobboyms/tablestore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.Register(reg)

	metrics.CommitsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.CommitsTotal.WithLabelValues(metrics.ResultConflict).Inc()
	metrics.DataObjectsFlushed.Inc()

	if got := testutil.ToFloat64(metrics.CommitsTotal.WithLabelValues(metrics.ResultOK)); got < 1 {
		t.Fatalf("expected ok commits >= 1, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered metric families")
	}
}
