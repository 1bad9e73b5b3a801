package prompush

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fleximart/internal/metrics"
)

func TestNewBackend_RejectsEmptyArgs(t *testing.T) {
	if _, err := NewBackend("", "http://localhost:9091"); err == nil {
		t.Fatal("expected error for empty job name")
	}
	if _, err := NewBackend("etl_job", ""); err == nil {
		t.Fatal("expected error for empty gateway URL")
	}
}

func TestBackend_AccumulatesSamples(t *testing.T) {
	b, err := NewBackend("etl_job", "http://localhost:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("etl_records_total", 3, metrics.Labels{"kind": "customers"})
	b.IncCounter("etl_records_total", 0, metrics.Labels{"kind": "customers"}) // no-op
	b.IncCounter("etl_step_total", 1, metrics.Labels{"step": "load", "status": "ok"})
	b.IncCounter("something_else", 1, nil) // unknown, ignored
	b.ObserveHistogram("etl_step_duration_seconds", 0.25, metrics.Labels{"step": "load", "status": "ok"})

	families, err := b.reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	got := map[string]bool{}
	for _, f := range families {
		got[f.GetName()] = true
		if f.GetName() == "etl_records_total" {
			if v := f.GetMetric()[0].GetCounter().GetValue(); v != 3 {
				t.Fatalf("etl_records_total = %v, want 3", v)
			}
		}
	}
	if !got["etl_step_total"] || !got["etl_step_duration_seconds"] {
		t.Fatalf("missing families: %v", got)
	}
	if got["something_else"] {
		t.Fatal("unknown metric name was registered")
	}
}

func TestFlush_PushesToGateway(t *testing.T) {
	received := 0
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received++
		w.WriteHeader(http.StatusOK)
	}))
	defer gw.Close()

	b, err := NewBackend("etl_job", gw.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("etl_batches_total", 1, nil)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if received == 0 {
		t.Fatal("gateway saw no push")
	}
}
