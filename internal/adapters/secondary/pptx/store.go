package pptx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// Store loads and saves decks as .pptx files
type Store struct {
	fs     ports.FileSystem
	reader *Reader
	writer *Writer
	logger *slog.Logger
}

var _ ports.DocumentStore = (*Store)(nil)

// NewStore creates a new .pptx document store
func NewStore(fs ports.FileSystem, inspector ports.ImageInspector, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("adapter", "pptx")
	return &Store{
		fs:     fs,
		reader: NewReader(inspector, logger),
		writer: NewWriter(logger),
		logger: logger,
	}
}

// Load reads the document at path
func (s *Store) Load(ctx context.Context, path string) (*entities.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	deck, err := s.reader.Read(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	s.logger.Info("Loaded presentation", slog.String("path", path), slog.Int("slides", deck.SlideCount()))
	return deck, nil
}

// Save writes the full document to path, replacing any existing file
func (s *Store) Save(ctx context.Context, deck *entities.Deck, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.writer.Write(deck)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := s.fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.logger.Info("Saved presentation", slog.String("path", path), slog.Int("slides", deck.SlideCount()))
	return nil
}
