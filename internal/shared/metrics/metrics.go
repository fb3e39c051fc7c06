package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Registry holds the analysis counters. The package-level functions write to
// a process-wide default registry.
type Registry struct {
	started   atomic.Uint64
	completed atomic.Uint64

	failed   labeledCounter
	attempts labeledCounter

	duration *histogram
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		duration: newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000}),
	}
}

var std = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return std }

// IncAnalysisStarted increments the started counter.
func IncAnalysisStarted() { std.IncAnalysisStarted() }

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() { std.IncAnalysisCompleted() }

// IncAnalysisFailed increments the failed counter for category.
func IncAnalysisFailed(category string) { std.IncAnalysisFailed(category) }

// IncLLMAttempt counts one completion attempt by outcome kind.
func IncLLMAttempt(outcome string) { std.IncLLMAttempt(outcome) }

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) { std.ObserveAnalysisDurationMs(value) }

func (r *Registry) IncAnalysisStarted() {
	r.started.Add(1)
}

func (r *Registry) IncAnalysisCompleted() {
	r.completed.Add(1)
}

func (r *Registry) IncAnalysisFailed(category string) {
	r.failed.Inc(category)
}

func (r *Registry) IncLLMAttempt(outcome string) {
	r.attempts.Inc(outcome)
}

func (r *Registry) ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	r.duration.Observe(value)
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return std.Handler()
}

// Handler exposes r in Prometheus text format.
func (r *Registry) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, r.Render())
	}
}

// Render renders the default registry in Prometheus text format.
func Render() string {
	return std.Render()
}

// Render renders r in Prometheus text format.
func (r *Registry) Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_started_total", "Total analyses started", r.started.Load())
	writeCounter(&buf, "analysis_completed_total", "Total analyses completed", r.completed.Load())
	writeLabeledCounter(&buf, "analysis_failed_total", "Total analyses failed by category", "category", r.failed.Snapshot())
	writeLabeledCounter(&buf, "llm_attempts_total", "Completion attempts by outcome", "outcome", r.attempts.Snapshot())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", r.duration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func (l *labeledCounter) Inc(label string) {
	if label == "" {
		label = "unknown"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.values == nil {
		l.values = make(map[string]uint64)
	}
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe stores value in the first bucket whose bound it fits; rendering
// accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the elapsed time since start in milliseconds.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
