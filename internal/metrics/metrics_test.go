package metrics

import "testing"

type recordingBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	flushed    int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, _ Labels) {
	r.counters[name] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, _ Labels) {
	r.histograms[name] = append(r.histograms[name], value)
}

func (r *recordingBackend) Flush() error {
	r.flushed++
	return nil
}

func TestDefaultBackendIsNop(t *testing.T) {
	SetBackend(nil)
	IncCounter("x", 1, nil)
	ObserveHistogram("y", 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush: %v", err)
	}
}

func TestSetBackendRoutesCalls(t *testing.T) {
	rec := newRecordingBackend()
	SetBackend(rec)
	defer SetBackend(nil)

	IncCounter("etl_records_total", 3, Labels{"kind": "customers"})
	IncCounter("etl_records_total", 2, Labels{"kind": "customers"})
	ObserveHistogram("etl_step_duration_seconds", 0.5, Labels{"step": "load"})
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if rec.counters["etl_records_total"] != 5 {
		t.Fatalf("counter = %v", rec.counters)
	}
	if len(rec.histograms["etl_step_duration_seconds"]) != 1 {
		t.Fatalf("histograms = %v", rec.histograms)
	}
	if rec.flushed != 1 {
		t.Fatalf("flushed = %d", rec.flushed)
	}
}

func TestSetBackendNilRestoresNop(t *testing.T) {
	rec := newRecordingBackend()
	SetBackend(rec)
	SetBackend(nil)

	IncCounter("x", 1, nil)
	if len(rec.counters) != 0 {
		t.Fatalf("calls leaked to removed backend: %v", rec.counters)
	}
}
