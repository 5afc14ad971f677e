// Package monitoring keeps in-process service counters.
package monitoring

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Counter names.
const (
	PredictionsHabitable     = "predictions_habitable_total"
	PredictionsUninhabitable = "predictions_uninhabitable_total"
	PredictionsRejected      = "predictions_rejected_total"
	PredictionsUnavailable   = "predictions_unavailable_total"
	ImagesRendered           = "images_served_total"
	ImagesMissingData        = "images_missing_data_total"
	ImagesFailed             = "images_failed_total"
)

var counterHelp = map[string]string{
	PredictionsHabitable:     "Predictions classified potentially habitable",
	PredictionsUninhabitable: "Predictions classified likely uninhabitable",
	PredictionsRejected:      "Prediction requests rejected for invalid input",
	PredictionsUnavailable:   "Prediction requests made while no model was loaded",
	ImagesRendered:           "Planet images served",
	ImagesMissingData:        "Planet image requests for records without radius or temperature",
	ImagesFailed:             "Planet image requests that failed to render",
}

// Metrics 服务指标
type Metrics struct {
	mu        sync.RWMutex
	counters  map[string]int64
	startTime time.Time
}

// NewMetrics 创建指标收集器
func NewMetrics() *Metrics {
	return &Metrics{
		counters:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// Incr adds one to the named counter. A nil receiver is a no-op.
func (m *Metrics) Incr(name string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Counter returns the current value of name.
func (m *Metrics) Counter(name string) int64 {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// Uptime 获取运行时间
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Snapshot is the JSON view of the metrics.
type Snapshot struct {
	Uptime     string           `json:"uptime"`
	Goroutines int              `json:"goroutines"`
	HeapAlloc  uint64           `json:"heap_alloc"`
	GCCount    uint32           `json:"gc_count"`
	Counters   map[string]int64 `json:"counters"`
}

// Snapshot copies the counters and reads runtime stats.
func (m *Metrics) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.RLock()
	counters := make(map[string]int64, len(m.counters))
	for name, v := range m.counters {
		counters[name] = v
	}
	m.mu.RUnlock()

	return Snapshot{
		Uptime:     m.Uptime().Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		GCCount:    mem.NumGC,
		Counters:   counters,
	}
}

// ExportPrometheus 导出Prometheus文本格式
func (m *Metrics) ExportPrometheus() string {
	snap := m.Snapshot()

	names := make([]string, 0, len(counterHelp))
	for name := range counterHelp {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "# HELP %s %s\n", name, counterHelp[name])
		fmt.Fprintf(&b, "# TYPE %s counter\n", name)
		fmt.Fprintf(&b, "%s %d\n", name, snap.Counters[name])
	}
	fmt.Fprintf(&b, "# HELP go_goroutines Number of goroutines\n# TYPE go_goroutines gauge\ngo_goroutines %d\n", snap.Goroutines)
	fmt.Fprintf(&b, "# HELP process_uptime_seconds Seconds since start\n# TYPE process_uptime_seconds gauge\nprocess_uptime_seconds %.0f\n", m.Uptime().Seconds())
	return b.String()
}
