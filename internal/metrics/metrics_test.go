package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.FetchRequestsTotal == nil {
		t.Error("FetchRequestsTotal is nil")
	}
	if m.FetchDurationSeconds == nil {
		t.Error("FetchDurationSeconds is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.LayoutBuildsTotal == nil {
		t.Error("LayoutBuildsTotal is nil")
	}
	if m.QueryRequestsTotal == nil {
		t.Error("QueryRequestsTotal is nil")
	}
	if m.QueryDurationSeconds == nil {
		t.Error("QueryDurationSeconds is nil")
	}
	if m.BotUpdatesTotal == nil {
		t.Error("BotUpdatesTotal is nil")
	}
	if m.BotDurationSeconds == nil {
		t.Error("BotDurationSeconds is nil")
	}
	if m.BotSendFailuresTotal == nil {
		t.Error("BotSendFailuresTotal is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
}

func TestRecordFetch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordFetch("main", "success", 1.5)
	m.RecordFetch("main", "error", 2.0)
	m.RecordFetch("branch", "timeout", 30.0)

	if got := testutil.ToFloat64(m.FetchRequestsTotal.WithLabelValues("main", "success")); got != 1 {
		t.Errorf("fetch success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.FetchRequestsTotal.WithLabelValues("branch", "timeout")); got != 1 {
		t.Errorf("fetch timeout counter = %v, want 1", got)
	}
}

func TestRecordCacheHitMiss(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordCacheHit("main")
	m.RecordCacheHit("main")
	m.RecordCacheMiss("main")

	if got := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("main")); got != 2 {
		t.Errorf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("main")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
}

func TestRecordQuery(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordQuery("teacher", "success", 0.01)
	m.RecordQuery("free_rooms", "no_data", 0.02)
	m.RecordBotUpdate("callback", "success", 0.1)
	m.RecordBotSendFailure("send_message")
	m.RecordLayoutBuild("main", "ok")
	m.RecordSingleflightDedup("main")

	if got := testutil.ToFloat64(m.QueryRequestsTotal.WithLabelValues("teacher", "success")); got != 1 {
		t.Errorf("query counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BotSendFailuresTotal.WithLabelValues("send_message")); got != 1 {
		t.Errorf("send failure counter = %v, want 1", got)
	}
}
