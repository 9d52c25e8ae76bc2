package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	enhancementRequestedTotal atomic.Uint64
	enhancementCompletedTotal atomic.Uint64
	enhancementDeletedTotal   atomic.Uint64
	completionChecksTotal     atomic.Uint64
	downloadTotal             atomic.Uint64
	renderFailedTotal         atomic.Uint64

	// Time from enhancement creation until a read first observes the
	// generator's output. Generators are humans or batch jobs, hence the
	// wide buckets.
	completionLatency = newHistogram([]float64{1000, 5000, 30000, 60000, 300000, 900000, 3600000, 14400000, 86400000})
)

// IncEnhancementRequested increments the requested counter.
func IncEnhancementRequested() {
	enhancementRequestedTotal.Add(1)
}

// IncEnhancementCompleted increments the completed counter.
func IncEnhancementCompleted() {
	enhancementCompletedTotal.Add(1)
}

// IncEnhancementDeleted increments the deleted counter.
func IncEnhancementDeleted() {
	enhancementDeletedTotal.Add(1)
}

// IncCompletionCheck increments the filesystem probe counter.
func IncCompletionCheck() {
	completionChecksTotal.Add(1)
}

// IncDownload increments the artifact download counter.
func IncDownload() {
	downloadTotal.Add(1)
}

// IncRenderFailed increments the render failure counter.
func IncRenderFailed() {
	renderFailedTotal.Add(1)
}

// ObserveCompletionLatencyMs records creation-to-completion latency in milliseconds.
func ObserveCompletionLatencyMs(value float64) {
	if value < 0 {
		value = 0
	}
	completionLatency.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "enhancement_requested_total", "Total enhancements requested", enhancementRequestedTotal.Load())
	writeCounter(&buf, "enhancement_completed_total", "Total enhancements whose output was observed", enhancementCompletedTotal.Load())
	writeCounter(&buf, "enhancement_deleted_total", "Total enhancements deleted", enhancementDeletedTotal.Load())
	writeCounter(&buf, "enhancement_completion_checks_total", "Total filesystem completion probes", completionChecksTotal.Load())
	writeCounter(&buf, "enhancement_download_total", "Total artifact downloads", downloadTotal.Load())
	writeCounter(&buf, "enhancement_render_failed_total", "Total artifact render failures", renderFailedTotal.Load())
	writeHistogram(&buf, "enhancement_completion_latency_ms", "Creation-to-completion latency in milliseconds", completionLatency.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts holds per-bucket tallies; exposition accumulates them.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
