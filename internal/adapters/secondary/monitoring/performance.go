package monitoring

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ewmaAlpha weights the newest sample of the average build time
const ewmaAlpha = 0.1

// Metrics is a point-in-time copy of the monitor's counters
type Metrics struct {
	StartTime time.Time

	Builds           int64
	FailedBuilds     int64
	LastBuild        time.Time
	LastBuildTime    time.Duration
	AverageBuildTime time.Duration
	LastError        string
	Slides           int

	HTTPRequests         int64
	WebSocketConnections int64

	MemoryUsage    int64
	HeapSize       int64
	GoroutineCount int
	GCCount        uint32
}

// Monitor tracks rebuilds and request activity of a preview session
type Monitor struct {
	mu      sync.RWMutex
	metrics Metrics
	now     func() time.Time
}

var _ ports.PreviewMetrics = (*Monitor)(nil)

// NewMonitor creates a new monitor
func NewMonitor() *Monitor {
	return &Monitor{
		metrics: Metrics{StartTime: time.Now()},
		now:     time.Now,
	}
}

// RecordBuild records one rebuild. Failed builds keep the slide count of
// the last good build.
func (m *Monitor) RecordBuild(duration time.Duration, slides int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.metrics.Builds++
	m.metrics.LastBuild = m.now()
	m.metrics.LastBuildTime = duration
	if m.metrics.AverageBuildTime == 0 {
		m.metrics.AverageBuildTime = duration
	} else {
		m.metrics.AverageBuildTime = time.Duration(
			float64(m.metrics.AverageBuildTime)*(1-ewmaAlpha) + float64(duration)*ewmaAlpha,
		)
	}

	if err != nil {
		m.metrics.FailedBuilds++
		m.metrics.LastError = err.Error()
		return
	}
	m.metrics.LastError = ""
	m.metrics.Slides = slides
}

// RecordHTTPRequest records an HTTP request
func (m *Monitor) RecordHTTPRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.HTTPRequests++
}

// RecordWebSocketConnection records a WebSocket connection
func (m *Monitor) RecordWebSocketConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics.WebSocketConnections++
}

// Snapshot returns the current counters with fresh runtime figures
func (m *Monitor) Snapshot() Metrics {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	m.mu.RLock()
	snapshot := m.metrics
	m.mu.RUnlock()

	snapshot.MemoryUsage = safeUint64ToInt64(memStats.Alloc)
	snapshot.HeapSize = safeUint64ToInt64(memStats.HeapAlloc)
	snapshot.GoroutineCount = runtime.NumGoroutine()
	snapshot.GCCount = memStats.NumGC
	return snapshot
}

// Uptime returns the time since the monitor was created
func (m *Monitor) Uptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now().Sub(m.metrics.StartTime)
}

// Status returns the snapshot shaped for the metrics endpoint
func (m *Monitor) Status() map[string]interface{} {
	metrics := m.Snapshot()

	builds := map[string]interface{}{
		"total":           metrics.Builds,
		"failed":          metrics.FailedBuilds,
		"slides":          metrics.Slides,
		"last_ms":         metrics.LastBuildTime.Milliseconds(),
		"average_ms":      metrics.AverageBuildTime.Milliseconds(),
		"last_error":      metrics.LastError,
		"last_build_unix": int64(0),
	}
	if !metrics.LastBuild.IsZero() {
		builds["last_build_unix"] = metrics.LastBuild.Unix()
	}

	return map[string]interface{}{
		"uptime":     m.Uptime().Round(time.Second).String(),
		"builds":     builds,
		"memory_mb":  metrics.MemoryUsage / (1024 * 1024),
		"heap_mb":    metrics.HeapSize / (1024 * 1024),
		"goroutines": metrics.GoroutineCount,
		"gc_cycles":  metrics.GCCount,
		"operations": map[string]interface{}{
			"http_requests":         metrics.HTTPRequests,
			"websocket_connections": metrics.WebSocketConnections,
		},
	}
}

// safeUint64ToInt64 safely converts uint64 to int64, capping at max int64 value
func safeUint64ToInt64(val uint64) int64 {
	if val > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(val)
}
