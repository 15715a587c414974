package datadog

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// fakeSubmitter records submitted payloads instead of doing real HTTP.
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return datadogV2.IntakePayloadAccepted{}, nil, f.err
	}
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, nil
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

// stoppedTicker returns a ticker that never fires, so tests control flushing
// explicitly.
func stoppedTicker(time.Duration) *time.Ticker {
	t := time.NewTicker(time.Hour)
	t.Stop()
	return t
}

func newTestBackend(t *testing.T, sub *fakeSubmitter) *Backend {
	t.Helper()

	b, err := NewBackend(context.Background(), Options{
		JobName:   "test_job",
		Tags:      []string{"tier:test"},
		now:       func() time.Time { return time.Unix(1700000000, 0) },
		newTicker: stoppedTicker,
		submitter: sub,
	})
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	return b
}

// TestFlush_EmptyBufferSubmitsNothing verifies no payload is sent when there
// is nothing to report.
func TestFlush_EmptyBufferSubmitsNothing(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 0 {
		t.Fatalf("expected no submissions, got %d", sub.count())
	}
}

// TestFlush_SubmitsBufferedSeries verifies counts, error counts and duration
// gauges make it into one payload, tagged with the job.
func TestFlush_SubmitsBufferedSeries(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	b.RecordHTTP("test_job", 200, nil, 120*time.Millisecond, 2048)
	b.RecordHTTP("test_job", 200, nil, 80*time.Millisecond, 1024)
	b.RecordHTTP("test_job", 0, errors.New("dial tcp: refused"), 30*time.Millisecond, 0)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("expected 1 submission, got %d", sub.count())
	}

	series := sub.payloads[0].Series
	byName := map[string]datadogV2.MetricSeries{}
	for _, s := range series {
		byName[s.Metric+"/"+tagOf(s, "status:")] = s
	}

	req200, ok := byName["eett.http.requests/status:200"]
	if !ok {
		t.Fatalf("missing requests series for status 200; have %v", keys(byName))
	}
	if got := *req200.Points[0].Value; got != 2 {
		t.Errorf("status 200 count = %v, want 2", got)
	}
	if _, ok := byName["eett.http.errors/status:0"]; !ok {
		t.Errorf("missing errors series for status 0")
	}
	if _, ok := byName["eett.http.request_duration_ms.avg/"]; !ok {
		t.Errorf("missing duration gauge")
	}

	found := false
	for _, tag := range req200.Tags {
		if tag == "job:test_job" {
			found = true
		}
	}
	if !found {
		t.Errorf("job tag missing: %v", req200.Tags)
	}

	// Flush drains the buffers.
	if err := b.Flush(); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("drained buffer resubmitted: %d payloads", sub.count())
	}
}

// TestFlush_SubmitError verifies submission failures surface to the caller
// (the buffers were already snapshotted; losing one interval is accepted).
func TestFlush_SubmitError(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{err: errors.New("api down")}
	b := newTestBackend(t, sub)
	defer func() { _ = b.Close() }()

	b.RecordHTTP("test_job", 200, nil, time.Millisecond, 1)
	if err := b.Flush(); err == nil {
		t.Fatal("expected error from Flush")
	}
}

// TestClose_FinalFlush verifies Close stops the loop and flushes the tail.
func TestClose_FinalFlush(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{}
	b := newTestBackend(t, sub)

	b.RecordHTTP("test_job", 200, nil, time.Millisecond, 1)
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("expected final flush submission, got %d", sub.count())
	}
}

// TestParseTagsCSV verifies splitting and trimming.
func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	got := ParseTagsCSV(" env:prod , service:eett ,, ")
	if len(got) != 2 || got[0] != "env:prod" || got[1] != "service:eett" {
		t.Fatalf("ParseTagsCSV = %v", got)
	}
	if got := ParseTagsCSV(""); got != nil {
		t.Fatalf("empty input: %v", got)
	}
}

func tagOf(s datadogV2.MetricSeries, prefix string) string {
	for _, tag := range s.Tags {
		if len(tag) >= len(prefix) && tag[:len(prefix)] == prefix {
			return tag
		}
	}
	return ""
}

func keys(m map[string]datadogV2.MetricSeries) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
