package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// SessionOptions is fixed when a session is constructed
type SessionOptions struct {
	// Path is the storage location. Empty keeps the document in memory.
	Path string
	// Overwrite starts a blank document even when Path exists
	Overwrite bool
	// AutoSave rewrites the document after every mutating operation
	AutoSave bool
	// Template is used for new documents; nil selects the standard template
	Template *entities.Template
	Metadata entities.Metadata
}

// Session is one presentation document plus its load/save configuration
type Session struct {
	store    ports.DocumentStore
	fs       ports.FileSystem
	builder  *SlideBuilder
	deck     *entities.Deck
	path     string
	autoSave bool
	logger   *slog.Logger
}

// NewSession loads the document at opts.Path when it exists, otherwise it
// starts a blank document destined for that path.
func NewSession(
	ctx context.Context,
	store ports.DocumentStore,
	fs ports.FileSystem,
	builder *SlideBuilder,
	opts SessionOptions,
	logger *slog.Logger,
) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		store:    store,
		fs:       fs,
		builder:  builder,
		autoSave: opts.AutoSave,
		logger:   logger.With("service", "session"),
	}

	if opts.Path != "" {
		path, err := fs.ExpandHome(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("expanding document path: %w", err)
		}
		s.path = path
	}

	if s.path != "" && !opts.Overwrite && fs.Exists(s.path) {
		deck, err := store.Load(ctx, s.path)
		if err != nil {
			return nil, fmt.Errorf("loading document: %w", err)
		}
		s.deck = deck
		s.logger.Debug("Loaded document",
			slog.String("path", s.path),
			slog.Int("slides", deck.SlideCount()),
		)
		return s, nil
	}

	s.deck = entities.NewDeck(opts.Template)
	s.deck.Author = opts.Metadata.Author
	return s, nil
}

// Deck returns the in-memory document
func (s *Session) Deck() *entities.Deck {
	return s.deck
}

// Path returns the default storage path, or "" for in-memory sessions
func (s *Session) Path() string {
	return s.path
}

// OnDisk returns true when the session has a storage path
func (s *Session) OnDisk() bool {
	return s.path != ""
}

// AutoSave returns true when every mutating operation rewrites the document
func (s *Session) AutoSave() bool {
	return s.autoSave
}

// Builder returns the slide builder used by the session
func (s *Session) Builder() *SlideBuilder {
	return s.builder
}

// Save writes the full document to path, or to the session path when path
// is empty.
func (s *Session) Save(ctx context.Context, path string) error {
	target := s.path
	if path != "" {
		expanded, err := s.fs.ExpandHome(path)
		if err != nil {
			return fmt.Errorf("expanding save path: %w", err)
		}
		target = expanded
	}
	if target == "" {
		return entities.ErrNoPath
	}

	if err := s.store.Save(ctx, s.deck, target); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	s.logger.Debug("Saved document",
		slog.String("path", target),
		slog.Int("slides", s.deck.SlideCount()),
	)
	return nil
}

// AddTitleSlide adds a title slide with an optional subtitle
func (s *Session) AddTitleSlide(ctx context.Context, title, subtitle string) (*entities.Report, error) {
	slide, err := s.newSlide(entities.LayoutTitle, title)
	if err != nil {
		return nil, err
	}

	if subtitle != "" {
		shape, err := slide.Placeholder(1)
		if err != nil {
			return nil, err
		}
		shape.Text.SetText(subtitle)
	}

	return s.commit(ctx, slide, nil)
}

// AddTextSlide adds a title and content slide whose body is the outline
func (s *Session) AddTextSlide(ctx context.Context, title, text string) (*entities.Report, error) {
	slide, err := s.newSlide(entities.LayoutTitleAndContent, title)
	if err != nil {
		return nil, err
	}

	body, err := slide.Placeholder(1)
	if err != nil {
		return nil, err
	}
	if err := s.builder.PopulateText(body, text); err != nil {
		return nil, err
	}

	return s.commit(ctx, slide, nil)
}

// AddTwoContentSlide adds a two content slide. The left region is always an
// outline; the right region takes a figure, an image path or outline text.
func (s *Session) AddTwoContentSlide(ctx context.Context, title, left string, right entities.Payload) (*entities.Report, error) {
	slide, err := s.newSlide(entities.LayoutTwoContent, title)
	if err != nil {
		return nil, err
	}

	leftShape, err := slide.Placeholder(1)
	if err != nil {
		return nil, err
	}
	if err := s.builder.PopulateText(leftShape, left); err != nil {
		return nil, err
	}

	rightShape, err := slide.Placeholder(2)
	if err != nil {
		return nil, err
	}
	diagnostics, err := s.builder.Populate(ctx, slide, rightShape, right)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, slide, diagnostics)
}

// AddImageSlide adds a slide showing a figure or image file. Any other
// payload is a content error and leaves the document untouched.
func (s *Session) AddImageSlide(ctx context.Context, title string, image entities.Payload) (*entities.Report, error) {
	if image.Kind() == entities.PayloadText {
		return nil, &entities.ContentError{Payload: image, Reason: "not a figure or an existing file"}
	}

	slide, err := s.newSlide(entities.LayoutTitleAndContent, title)
	if err != nil {
		return nil, err
	}

	body, err := slide.Placeholder(1)
	if err != nil {
		return nil, err
	}
	diagnostics, err := s.builder.PlaceImage(ctx, slide, body, image)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, slide, diagnostics)
}

// SetNotes replaces the notes text of the slide at index
func (s *Session) SetNotes(ctx context.Context, index int, notes string) (*entities.Report, error) {
	if index < 0 || index >= s.deck.SlideCount() {
		return nil, fmt.Errorf("slide index %d out of range (deck has %d slides)", index, s.deck.SlideCount())
	}
	slide := s.deck.Slides[index]
	slide.Notes = notes

	return s.finish(ctx, slide, nil)
}

// Slots discovers named elements declared in slide notes below the
// delimiter line.
func (s *Session) Slots() ([]entities.Slot, error) {
	return s.deck.Slots()
}

// FillSlot pours a payload into the element a slot names
func (s *Session) FillSlot(ctx context.Context, name string, payload entities.Payload) (*entities.Report, error) {
	slots, err := s.Slots()
	if err != nil {
		return nil, err
	}

	for _, slot := range slots {
		if slot.Name != name {
			continue
		}
		target, err := slot.Slide.Element(slot.Element)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		diagnostics, err := s.builder.Populate(ctx, slot.Slide, target, payload)
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		return s.finish(ctx, slot.Slide, diagnostics)
	}

	return nil, fmt.Errorf("%w: %s", entities.ErrSlotNotFound, name)
}

// newSlide builds a detached slide so a failed operation leaves the deck as it was
func (s *Session) newSlide(layoutIndex int, title string) (*entities.Slide, error) {
	layout, err := s.deck.Template.Layout(layoutIndex)
	if err != nil {
		return nil, err
	}
	slide := entities.NewSlide(layout)
	if err := s.builder.SetTitle(slide, title); err != nil {
		return nil, err
	}
	return slide, nil
}

func (s *Session) commit(ctx context.Context, slide *entities.Slide, diagnostics []entities.Diagnostic) (*entities.Report, error) {
	s.deck.AppendSlide(slide)
	s.logger.Debug("Added slide",
		slog.String("slide_id", slide.ID),
		slog.String("layout", slide.LayoutName),
		slog.Int("index", s.deck.SlideCount()-1),
	)
	return s.finish(ctx, slide, diagnostics)
}

func (s *Session) finish(ctx context.Context, slide *entities.Slide, diagnostics []entities.Diagnostic) (*entities.Report, error) {
	report := &entities.Report{
		SlideID:     slide.ID,
		SlideIndex:  s.deck.IndexOf(slide),
		Diagnostics: diagnostics,
	}

	if s.autoSave && s.OnDisk() {
		if err := s.Save(ctx, ""); err != nil {
			return report, fmt.Errorf("autosave: %w", err)
		}
		report.Saved = true
	}
	return report, nil
}
