package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// PollingWatcher polls a deck source and the pictures it references. A
// single loop scans every watched path on each tick; paths debounce
// independently. Content is compared by SHA-256, so touching a file without
// changing it is not reported.
type PollingWatcher struct {
	fs        ports.FileSystem
	interval  time.Duration
	debounce  time.Duration
	retries   int
	retryWait time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	files   map[string]*watchedFile
	started bool
	stopped bool

	events chan ports.FileChangeEvent
	stopCh chan struct{}
	done   chan struct{}
}

// snapshot is what the watcher last saw at a path
type snapshot struct {
	exists  bool
	size    int64
	modTime time.Time
	sum     string
}

// watchedFile is owned by the poll loop once registered
type watchedFile struct {
	ctx      context.Context
	last     snapshot
	pending  ports.ChangeType
	lastSent time.Time
}

var _ ports.FileWatcher = (*PollingWatcher)(nil)

// NewPollingWatcher creates a watcher; polling starts with the first Watch
func NewPollingWatcher(fs ports.FileSystem, cfg entities.WatcherConfig, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollingWatcher{
		fs:        fs,
		interval:  cfg.GetInterval(),
		debounce:  cfg.GetDebounce(),
		retries:   cfg.MaxRetries,
		retryWait: cfg.GetRetryDelay(),
		logger:    logger.With("adapter", "watcher"),
		files:     make(map[string]*watchedFile),
		events:    make(chan ports.FileChangeEvent, 10),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Watch adds path until ctx is cancelled or the watcher stops. The path
// must exist; a briefly missing file is retried per the watcher config.
func (w *PollingWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileChangeEvent, error) {
	abs, err := w.fs.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if w.isStopped() {
		return nil, errors.New("watcher stopped")
	}

	first, err := w.initialSnapshot(ctx, abs)
	if err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil, errors.New("watcher stopped")
	}
	w.files[abs] = &watchedFile{ctx: ctx, last: first}
	if !w.started {
		w.started = true
		go w.loop()
	}

	w.logger.Debug("Watching file", slog.String("path", abs), slog.Duration("interval", w.interval))
	return w.events, nil
}

// Stop ends polling and closes the event channel. It is safe to call twice.
func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopCh)
	w.mu.Unlock()

	if started {
		<-w.done
	}
	close(w.events)
	return nil
}

func (w *PollingWatcher) isStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// initialSnapshot covers editors that save by delete and rename, which
// leave the path briefly missing
func (w *PollingWatcher) initialSnapshot(ctx context.Context, path string) (snapshot, error) {
	for attempt := 0; ; attempt++ {
		snap, err := w.observe(path, snapshot{})
		if err == nil && !snap.exists {
			err = fmt.Errorf("stat file: %w", os.ErrNotExist)
		}
		if err == nil || attempt >= w.retries {
			return snap, err
		}
		select {
		case <-ctx.Done():
			return snapshot{}, ctx.Err()
		case <-time.After(w.retryWait):
		}
	}
}

func (w *PollingWatcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case now := <-ticker.C:
			for _, event := range w.poll(now) {
				select {
				case w.events <- event:
					w.logger.Debug("File changed", slog.String("path", event.Path), slog.String("type", event.Type.String()))
				case <-w.stopCh:
					return
				}
			}
		}
	}
}

// poll rescans every live path and returns the events due at now. Changes
// inside a path's debounce window are held and sent as one trailing event.
func (w *PollingWatcher) poll(now time.Time) []ports.FileChangeEvent {
	w.mu.Lock()
	paths := make([]string, 0, len(w.files))
	files := make(map[string]*watchedFile, len(w.files))
	for path, f := range w.files {
		if f.ctx.Err() != nil {
			delete(w.files, path)
			continue
		}
		paths = append(paths, path)
		files[path] = f
	}
	w.mu.Unlock()
	sort.Strings(paths)

	var due []ports.FileChangeEvent
	for _, path := range paths {
		f := files[path]

		cur, err := w.observe(path, f.last)
		if err != nil {
			w.logger.Warn("Watch error", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		if kind, changed := classify(f.last, cur); changed {
			f.pending = kind
		}
		f.last = cur

		if f.pending == "" || now.Sub(f.lastSent) < w.debounce {
			continue
		}
		due = append(due, ports.FileChangeEvent{Path: path, Type: f.pending, Timestamp: now})
		f.pending = ""
		f.lastSent = now
	}
	return due
}

// observe stats path and hashes it when size or mtime moved since prev.
// A missing file yields the zero snapshot.
func (w *PollingWatcher) observe(path string, prev snapshot) (snapshot, error) {
	info, err := w.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return snapshot{}, nil
	}
	if err != nil {
		return prev, fmt.Errorf("stat file: %w", err)
	}

	cur := snapshot{exists: true, size: info.Size(), modTime: info.ModTime()}
	if prev.exists && prev.size == cur.size && prev.modTime.Equal(cur.modTime) {
		cur.sum = prev.sum
		return cur, nil
	}

	sum, err := w.checksum(path)
	if err != nil {
		return prev, fmt.Errorf("calculate checksum: %w", err)
	}
	cur.sum = sum
	return cur, nil
}

// classify reports how a path changed between two snapshots
func classify(prev, cur snapshot) (ports.ChangeType, bool) {
	switch {
	case prev.exists && !cur.exists:
		return ports.Deleted, true
	case !prev.exists && cur.exists:
		return ports.Created, true
	case cur.exists && prev.sum != cur.sum:
		return ports.Modified, true
	default:
		return "", false
	}
}

func (w *PollingWatcher) checksum(path string) (string, error) {
	file, err := w.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
