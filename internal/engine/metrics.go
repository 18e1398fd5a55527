package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metric names.
const (
	MetricPDFExtractions      = "pdf_extractions"
	MetricTranscriptRequests  = "transcript_requests"
	MetricTranscriptFailures  = "transcript_failures"
	MetricPlaylistResolutions = "playlist_resolutions"
	MetricLLMCalls            = "llm_calls"
	MetricLLMErrors           = "llm_errors"
	MetricFilesSaved          = "files_saved"
)

var metricNames = []string{
	MetricPDFExtractions,
	MetricTranscriptRequests, MetricTranscriptFailures,
	MetricPlaylistResolutions,
	MetricLLMCalls, MetricLLMErrors,
	MetricFilesSaved,
}

// Metrics tracks operational counters for one process. A nil *Metrics is a no-op.
type Metrics struct {
	counters map[string]*atomic.Int64
}

// NewMetrics returns a registry with every known counter at zero.
func NewMetrics() *Metrics {
	m := &Metrics{counters: make(map[string]*atomic.Int64, len(metricNames))}
	for _, name := range metricNames {
		m.counters[name] = new(atomic.Int64)
	}
	return m
}

// Incr adds one to the named counter. Unknown names are ignored.
func (m *Metrics) Incr(name string) {
	if m == nil {
		return
	}
	if c, ok := m.counters[name]; ok {
		c.Add(1)
	}
}

// Get returns the current value of the named counter.
func (m *Metrics) Get(name string) int64 {
	if m == nil {
		return 0
	}
	if c, ok := m.counters[name]; ok {
		return c.Load()
	}
	return 0
}

// Snapshot returns all counters.
func (m *Metrics) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(metricNames))
	for _, name := range metricNames {
		out[name] = m.Get(name)
	}
	return out
}

// Format returns metrics as "name value" lines in a fixed order.
func (m *Metrics) Format() string {
	var sb strings.Builder
	for _, name := range metricNames {
		fmt.Fprintf(&sb, "%s %d\n", name, m.Get(name))
	}
	return sb.String()
}
