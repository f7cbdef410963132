package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := NewPrometheusHooks(reg)

	h.OnAlignStart(ctx, "toy", 3)
	h.OnAlignComplete(ctx, "toy", 12, time.Millisecond, nil)
	h.OnAlignComplete(ctx, "toy", 0, time.Millisecond, errors.New("boom"))
	h.OnSearchComplete(ctx, 5, 3, 40, time.Microsecond)
	h.OnSearchComplete(ctx, 5, 5, 2, time.Microsecond)
	h.OnCacheHit(ctx, "lattice")
	h.OnCacheMiss(ctx, "lattice")
	h.OnCacheMiss(ctx, "lattice")
	h.OnCacheSet(ctx, "result", 100)
	h.OnCacheSet(ctx, "result", 28)
	h.OnRequest(ctx, "GET", "/healthz")
	h.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"align ok", testutil.ToFloat64(h.alignTotal.WithLabelValues("ok")), 1},
		{"align error", testutil.ToFloat64(h.alignTotal.WithLabelValues("error")), 1},
		{"searches", testutil.ToFloat64(h.searchTotal), 2},
		{"pops", testutil.ToFloat64(h.searchPops), 42},
		{"cache hit", testutil.ToFloat64(h.cacheEvents.WithLabelValues("lattice", "hit")), 1},
		{"cache miss", testutil.ToFloat64(h.cacheEvents.WithLabelValues("lattice", "miss")), 2},
		{"cache set", testutil.ToFloat64(h.cacheEvents.WithLabelValues("result", "set")), 2},
		{"cache bytes", testutil.ToFloat64(h.cacheBytes.WithLabelValues("result")), 128},
		{"in flight", testutil.ToFloat64(h.httpInFlight), 0},
		{"requests", testutil.ToFloat64(h.httpRequests.WithLabelValues("GET", "/healthz", "200")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("GatherAndCount() error = %v", err)
	}
	if n == 0 {
		t.Error("GatherAndCount() = 0, want registered series")
	}
}

func TestPrometheusHooksDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusHooks(reg)
	defer func() {
		if recover() == nil {
			t.Error("second NewPrometheusHooks() on one registry should panic")
		}
	}()
	NewPrometheusHooks(reg)
}
