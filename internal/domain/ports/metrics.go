package ports

import "time"

// BuildRecorder receives the outcome of every preview rebuild
type BuildRecorder interface {
	RecordBuild(duration time.Duration, slides int, err error)
}

// PreviewMetrics collects preview server activity
type PreviewMetrics interface {
	BuildRecorder
	RecordHTTPRequest()
	RecordWebSocketConnection()
	// Status returns a JSON-ready snapshot
	Status() map[string]interface{}
}
