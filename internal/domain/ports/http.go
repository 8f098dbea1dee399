package ports

import (
	"context"
	"time"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// HTTPServer defines the interface for the HTTP server
type HTTPServer interface {
	Start(ctx context.Context, port int, host string) error
	Stop(ctx context.Context) error
	NotifyClients(event UpdateEvent) error
	IsRunning() bool
}

// PreviewServer is an HTTPServer that shows one deck at a time
type PreviewServer interface {
	HTTPServer
	// SetDeck replaces the deck being previewed and clears any build error
	SetDeck(deck *entities.Deck, reports []*entities.Report)
	// SetBuildError records a failed rebuild; the last good deck stays visible
	SetBuildError(err error)
}

// UpdateEvent represents an event sent to WebSocket clients
type UpdateEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Event types pushed to preview clients
const (
	EventTypeConnected = "connected"
	EventTypeReload    = "reload"
	EventTypeError     = "error"
)

// BrowserLauncher opens the preview page for the user
type BrowserLauncher interface {
	// Launch opens url; it is a no-op when noOpen is set
	Launch(url string, noOpen bool) error
	// Detect names the opener Launch would use
	Detect() (string, error)
}
