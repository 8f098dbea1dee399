package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// LiveReloadService keeps a preview server in step with a deck source. The
// source and every local image it references are watched; any change
// rebuilds the deck in memory and tells connected browsers to reload.
type LiveReloadService struct {
	composer *DeckComposer
	watcher  ports.FileWatcher
	server   ports.PreviewServer
	fs       ports.FileSystem
	options  SessionOptions
	logger   *slog.Logger

	mu       sync.Mutex
	recorder ports.BuildRecorder
	run      *reloadRun
}

// reloadRun is one Start..Stop cycle
type reloadRun struct {
	source string
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	paths map[string]struct{}
}

// claim marks path as watched and reports whether it was new
func (r *reloadRun) claim(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.paths[path]; ok {
		return false
	}
	r.paths[path] = struct{}{}
	return true
}

func (r *reloadRun) release(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.paths, path)
}

func (r *reloadRun) watchedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

// NewLiveReloadService creates a live reload service. Decks it builds are
// never written, so options.Path and options.AutoSave are cleared.
func NewLiveReloadService(
	composer *DeckComposer,
	watcher ports.FileWatcher,
	server ports.PreviewServer,
	fs ports.FileSystem,
	options SessionOptions,
	logger *slog.Logger,
) *LiveReloadService {
	if logger == nil {
		logger = slog.Default()
	}
	options.Path, options.AutoSave = "", false

	return &LiveReloadService{
		composer: composer,
		watcher:  watcher,
		server:   server,
		fs:       fs,
		options:  options,
		logger:   logger.With("service", "live_reload"),
	}
}

// SetRecorder reports every rebuild to recorder
func (s *LiveReloadService) SetRecorder(recorder ports.BuildRecorder) {
	s.mu.Lock()
	s.recorder = recorder
	s.mu.Unlock()
}

// Start watches sourcePath and publishes a first build. A failed first
// build goes to the server as a build error; only watch setup errors are
// returned.
func (s *LiveReloadService) Start(ctx context.Context, sourcePath string) error {
	source, err := s.fs.Abs(sourcePath)
	if err != nil {
		return fmt.Errorf("resolving deck source path: %w", err)
	}

	s.mu.Lock()
	if s.run != nil {
		s.mu.Unlock()
		return errors.New("already watching")
	}
	runCtx, cancel := context.WithCancel(ctx)
	run := &reloadRun{source: source, ctx: runCtx, cancel: cancel, paths: map[string]struct{}{source: {}}}
	s.run = run
	s.mu.Unlock()

	events, err := s.watcher.Watch(runCtx, source)
	if err != nil {
		s.mu.Lock()
		s.run = nil
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("starting watcher: %w", err)
	}

	if err := s.Rebuild(runCtx); err != nil {
		s.logger.Warn("Initial build failed", slog.String("error", err.Error()))
	}
	go s.consume(runCtx, events)
	return nil
}

// Stop ends watching. It is a no-op when idle.
func (s *LiveReloadService) Stop() error {
	s.mu.Lock()
	run := s.run
	s.run = nil
	s.mu.Unlock()

	if run != nil {
		run.cancel()
	}
	return nil
}

// IsWatching reports whether Start is in effect
func (s *LiveReloadService) IsWatching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run != nil
}

func (s *LiveReloadService) current() (*reloadRun, ports.BuildRecorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run, s.recorder
}

// Rebuild composes the source into a fresh in-memory deck. On success the
// server swaps to it; on failure the server keeps the previous deck and
// records the error.
func (s *LiveReloadService) Rebuild(ctx context.Context) error {
	run, recorder := s.current()
	if run == nil {
		return errors.New("no deck source path set")
	}

	start := time.Now()
	deck, reports, err := s.build(ctx, run)
	elapsed := time.Since(start)

	if recorder != nil {
		recorder.RecordBuild(elapsed, deck.SlideCount(), err)
	}
	if err != nil {
		s.server.SetBuildError(err)
		return err
	}

	s.server.SetDeck(deck, reports)
	s.logger.Info("Deck rebuilt",
		slog.String("source", run.source),
		slog.Int("slides", deck.SlideCount()),
		slog.Duration("duration", elapsed),
	)
	return nil
}

func (s *LiveReloadService) build(ctx context.Context, run *reloadRun) (*entities.Deck, []*entities.Report, error) {
	src, err := s.composer.LoadSource(ctx, run.source)
	if err != nil {
		return nil, nil, err
	}
	s.watchImages(run, src)

	session, reports, err := s.composer.Compose(ctx, src, s.options)
	if err != nil {
		return nil, nil, fmt.Errorf("composing deck: %w", err)
	}
	return session.Deck(), reports, nil
}

// watchImages adds local images the source references. Missing images are
// skipped; they will fail the build and be picked up once they exist.
func (s *LiveReloadService) watchImages(run *reloadRun, src *entities.DeckSource) {
	for _, slide := range src.Slides {
		for _, img := range slide.Images {
			path, err := s.fs.Abs(img)
			if err != nil || !s.fs.Exists(path) || !run.claim(path) {
				continue
			}
			if _, err := s.watcher.Watch(run.ctx, path); err != nil {
				run.release(path)
				s.logger.Debug("Not watching image",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

func (s *LiveReloadService) consume(ctx context.Context, events <-chan ports.FileChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.notify(s.onChange(ctx, event))
		}
	}
}

// onChange rebuilds after a file event and returns what browsers should hear
func (s *LiveReloadService) onChange(ctx context.Context, event ports.FileChangeEvent) ports.UpdateEvent {
	s.logger.Info("File change detected",
		slog.String("path", event.Path),
		slog.String("type", event.Type.String()),
	)

	if err := s.Rebuild(ctx); err != nil {
		s.logger.Error("Failed to rebuild deck",
			slog.String("path", event.Path),
			slog.String("error", err.Error()),
		)
		return ports.UpdateEvent{
			Type:      ports.EventTypeError,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"file": event.Path, "error": err.Error()},
		}
	}

	return ports.UpdateEvent{
		Type:      ports.EventTypeReload,
		Timestamp: event.Timestamp,
		Data:      map[string]interface{}{"file": event.Path, "type": event.Type.String()},
	}
}

func (s *LiveReloadService) notify(event ports.UpdateEvent) {
	if err := s.server.NotifyClients(event); err != nil {
		s.logger.Warn("Failed to notify preview clients",
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}
