// Package datadog implements a Datadog backend for the internal/metrics package.
//
// The backend buffers observations in memory, submits them on a ticker
// (default once per minute), and submits one final time on Close. Short
// scrapes therefore still produce a tail flush, and long multi-page scrapes
// produce an actual time series instead of a single spike at exit.
//
// Concurrency model:
//   - callers record observations at any time (lock-protected buffers)
//   - Flush snapshots and resets the buffers under the mutex, then submits
//     out-of-lock
//   - the flush loop calls Flush periodically; Close stops the loop
package datadog

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	dd "github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

// Options controls Datadog backend configuration.
type Options struct {
	// JobName becomes tag "job:<name>" on every metric. Defaults to "eett".
	JobName string

	// Tags are extra Datadog tags (e.g. []string{"env:prod"}).
	Tags []string

	// FlushEvery controls how often buffered metrics are submitted.
	// If <= 0, defaults to 60 seconds.
	FlushEvery time.Duration

	// Unexported test seams. Production code never sets these; unit tests
	// use them to avoid real submission and nondeterministic clocks.
	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker
	submitter metricsSubmitter
}

// metricsSubmitter is the minimal interface needed to submit metrics.
// The SDK exposes a concrete *datadogV2.MetricsApi; depending on this
// interface instead enables deterministic tests with a fake submitter.
type metricsSubmitter interface {
	SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error)
}

// Backend implements metrics.Backend for Datadog.
type Backend struct {
	api metricsSubmitter
	ctx context.Context

	flushEvery time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}

	baseTags []string

	now       func() time.Time
	newTicker func(d time.Duration) *time.Ticker

	mu sync.Mutex

	reqCounts  map[string]float64 // status -> count
	errCounts  map[string]float64 // status -> count
	durSamples []float64          // request duration, ms
	byteTotal  float64            // decoded body bytes
}

// NewBackend constructs a Datadog backend using the official client.
// Credentials come from the standard DD_API_KEY/DD_APP_KEY environment, via
// the SDK's default context.
func NewBackend(parent context.Context, opts Options) (*Backend, error) {
	job := opts.JobName
	if job == "" {
		job = "eett"
	}
	flushEvery := opts.FlushEvery
	if flushEvery <= 0 {
		flushEvery = 60 * time.Second
	}

	baseTags := make([]string, 0, 2+len(opts.Tags))
	baseTags = append(baseTags, resolveEnvTag(), "job:"+job)
	baseTags = append(baseTags, opts.Tags...)

	nowFn := opts.now
	if nowFn == nil {
		nowFn = time.Now
	}
	newTicker := opts.newTicker
	if newTicker == nil {
		newTicker = time.NewTicker
	}

	api := opts.submitter
	ctx := parent
	if api == nil {
		cfg := dd.NewConfiguration()
		api = datadogV2.NewMetricsApi(dd.NewAPIClient(cfg))
		ctx = dd.NewDefaultContext(parent)
	}

	b := &Backend{
		api:        api,
		ctx:        ctx,
		flushEvery: flushEvery,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		baseTags:   baseTags,
		now:        nowFn,
		newTicker:  newTicker,
		reqCounts:  map[string]float64{},
		errCounts:  map[string]float64{},
	}
	go b.loop()
	return b, nil
}

// RecordHTTP buffers one request observation. Status 0 means the request
// never completed (network error).
func (b *Backend) RecordHTTP(job string, status int, err error, dur time.Duration, bytes int64) {
	_ = job // already carried by the base job tag

	key := strconv.Itoa(status)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.reqCounts[key]++
	if err != nil {
		b.errCounts[key]++
	}
	b.durSamples = append(b.durSamples, float64(dur.Milliseconds()))
	if bytes > 0 {
		b.byteTotal += float64(bytes)
	}
}

// Flush submits all buffered observations as one payload.
// An empty buffer submits nothing and returns nil.
func (b *Backend) Flush() error {
	b.mu.Lock()
	reqCounts := b.reqCounts
	errCounts := b.errCounts
	durSamples := b.durSamples
	byteTotal := b.byteTotal
	b.reqCounts = map[string]float64{}
	b.errCounts = map[string]float64{}
	b.durSamples = nil
	b.byteTotal = 0
	b.mu.Unlock()

	ts := b.now().Unix()
	var series []datadogV2.MetricSeries

	for status, n := range reqCounts {
		series = append(series, b.countSeries("eett.http.requests", ts, n, "status:"+status))
	}
	for status, n := range errCounts {
		series = append(series, b.countSeries("eett.http.errors", ts, n, "status:"+status))
	}
	if len(durSamples) > 0 {
		series = append(series, b.gaugeSeries("eett.http.request_duration_ms.avg", ts, mean(durSamples)))
		series = append(series, b.gaugeSeries("eett.http.request_duration_ms.max", ts, maxSample(durSamples)))
	}
	if byteTotal > 0 {
		series = append(series, b.countSeries("eett.http.download_bytes", ts, byteTotal))
	}

	if len(series) == 0 {
		return nil
	}

	if _, _, err := b.api.SubmitMetrics(b.ctx, datadogV2.MetricPayload{Series: series}); err != nil {
		return fmt.Errorf("datadog submit: %w", err)
	}
	return nil
}

// Close stops the background flush loop and performs one final Flush.
// Close must be called at most once.
func (b *Backend) Close() error {
	close(b.stopCh)
	<-b.doneCh
	return b.Flush()
}

func (b *Backend) loop() {
	defer close(b.doneCh)

	t := b.newTicker(b.flushEvery)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			_ = b.Flush()
		case <-b.stopCh:
			return
		}
	}
}

func (b *Backend) countSeries(name string, ts int64, value float64, extraTags ...string) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: name,
		Type:   datadogV2.METRICINTAKETYPE_COUNT.Ptr(),
		Points: []datadogV2.MetricPoint{{
			Timestamp: dd.PtrInt64(ts),
			Value:     dd.PtrFloat64(value),
		}},
		Tags: append(append([]string{}, b.baseTags...), extraTags...),
	}
}

func (b *Backend) gaugeSeries(name string, ts int64, value float64) datadogV2.MetricSeries {
	return datadogV2.MetricSeries{
		Metric: name,
		Type:   datadogV2.METRICINTAKETYPE_GAUGE.Ptr(),
		Points: []datadogV2.MetricPoint{{
			Timestamp: dd.PtrInt64(ts),
			Value:     dd.PtrFloat64(value),
		}},
		Tags: append([]string{}, b.baseTags...),
	}
}

func resolveEnvTag() string {
	if v := strings.TrimSpace(os.Getenv("ENV")); v != "" {
		return "env:" + v
	}
	if v := strings.TrimSpace(os.Getenv("DD_ENV")); v != "" {
		return "env:" + v
	}
	return "env:unknown"
}

// ParseTagsCSV parses "k:v,k2:v2" into a tag slice, skipping empty entries.
func ParseTagsCSV(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func mean(samples []float64) float64 {
	var sum float64
	for _, v := range samples {
		sum += v
	}
	return sum / float64(len(samples))
}

func maxSample(samples []float64) float64 {
	m := samples[0]
	for _, v := range samples[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
