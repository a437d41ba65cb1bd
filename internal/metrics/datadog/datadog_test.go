package datadog

import (
	"reflect"
	"testing"

	"salesdw/internal/metrics"
)

type fakeClient struct {
	counts []string
	hists  []string
	tags   [][]string
	closed bool
}

func (f *fakeClient) Count(name string, value int64, tags []string, rate float64) error {
	f.counts = append(f.counts, name)
	f.tags = append(f.tags, tags)
	return nil
}

func (f *fakeClient) Histogram(name string, value float64, tags []string, rate float64) error {
	f.hists = append(f.hists, name)
	f.tags = append(f.tags, tags)
	return nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("labelsToTags(nil) = %v", got)
	}
	got := labelsToTags(metrics.Labels{"table": "dim_date", "job": "nightly", "status": "success"})
	want := []string{"job:nightly", "status:success", "table:dim_date"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("labelsToTags = %v, want %v", got, want)
	}
}

func TestBackendForwardsToClient(t *testing.T) {
	t.Parallel()

	fc := &fakeClient{}
	b := &Backend{client: fc}

	b.IncCounter(metrics.TableRowsTotal, 12, metrics.Labels{"table": "dim_stores"})
	b.ObserveHistogram(metrics.StepDuration, 0.5, metrics.Labels{"step": "load"})
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(fc.counts, []string{metrics.TableRowsTotal}) || !reflect.DeepEqual(fc.hists, []string{metrics.StepDuration}) {
		t.Fatalf("counts=%v hists=%v", fc.counts, fc.hists)
	}
	if !reflect.DeepEqual(fc.tags[0], []string{"table:dim_stores"}) {
		t.Fatalf("tags = %v", fc.tags)
	}
	if !fc.closed {
		t.Fatal("Flush did not close the client")
	}
}

func TestNilClientIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
}

func TestNewBackend_UDP(t *testing.T) {
	t.Parallel()

	b, err := NewBackend(Config{Addr: "127.0.0.1:8125", Namespace: "salesdw.", GlobalTags: []string{"env:test"}})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
