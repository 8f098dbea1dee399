package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// DeckComposer turns markdown deck sources into session operations
type DeckComposer struct {
	parser  ports.DeckSourceParser
	store   ports.DocumentStore
	fs      ports.FileSystem
	builder *SlideBuilder
	root    *slog.Logger
	logger  *slog.Logger
}

// NewDeckComposer creates a new deck composer
func NewDeckComposer(
	parser ports.DeckSourceParser,
	store ports.DocumentStore,
	fs ports.FileSystem,
	builder *SlideBuilder,
	logger *slog.Logger,
) *DeckComposer {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckComposer{
		parser:  parser,
		store:   store,
		fs:      fs,
		builder: builder,
		root:    logger,
		logger:  logger.With("service", "composer"),
	}
}

// LoadSource reads and parses a deck source file
func (c *DeckComposer) LoadSource(ctx context.Context, path string) (*entities.DeckSource, error) {
	if path == "" {
		return nil, errors.New("deck source path cannot be empty")
	}
	expanded, err := c.fs.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("expanding deck source path: %w", err)
	}

	content, err := c.fs.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading deck source: %w", err)
	}

	src, err := c.parser.Parse(ctx, content, filepath.Dir(expanded))
	if err != nil {
		return nil, fmt.Errorf("parsing deck source: %w", err)
	}
	return src, nil
}

// Build parses the source at sourcePath into a new session. The session
// starts blank even when opts.Path already exists.
func (c *DeckComposer) Build(ctx context.Context, sourcePath string, opts SessionOptions) (*Session, []*entities.Report, error) {
	src, err := c.LoadSource(ctx, sourcePath)
	if err != nil {
		return nil, nil, err
	}
	return c.Compose(ctx, src, opts)
}

// Compose builds a new session from an already parsed source
func (c *DeckComposer) Compose(ctx context.Context, src *entities.DeckSource, opts SessionOptions) (*Session, []*entities.Report, error) {
	if src.Template != "" {
		tmpl, err := entities.TemplateByName(src.Template)
		if err != nil {
			return nil, nil, err
		}
		opts.Template = tmpl
	}
	if src.Author != "" {
		opts.Metadata.Author = src.Author
	}
	opts.Overwrite = true

	session, err := NewSession(ctx, c.store, c.fs, c.builder, opts, c.root)
	if err != nil {
		return nil, nil, err
	}

	reports, err := c.Apply(ctx, src, session)
	if err != nil {
		return nil, reports, err
	}
	return session, reports, nil
}

// Apply appends every source slide to the session in order
func (c *DeckComposer) Apply(ctx context.Context, src *entities.DeckSource, session *Session) ([]*entities.Report, error) {
	deck := session.Deck()
	if src.Title != "" {
		deck.Title = src.Title
	}
	if src.Author != "" {
		deck.Author = src.Author
	}

	reports := make([]*entities.Report, 0, len(src.Slides))
	for _, slide := range src.Slides {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := c.applySlide(ctx, slide, session)
		if err != nil {
			return reports, fmt.Errorf("slide %d: %w", slide.Index+1, err)
		}

		if strings.TrimSpace(slide.Notes) != "" {
			notesReport, err := session.SetNotes(ctx, report.SlideIndex, slide.Notes)
			if err != nil {
				return reports, fmt.Errorf("slide %d notes: %w", slide.Index+1, err)
			}
			report.Saved = notesReport.Saved
		}

		for _, d := range report.Warnings() {
			c.logger.Warn("Slide built with warnings",
				slog.Int("slide", slide.Index+1),
				slog.String("code", d.Code),
				slog.String("message", d.Message),
			)
		}
		reports = append(reports, report)
	}

	c.logger.Info("Composed deck",
		slog.String("title", deck.Title),
		slog.Int("slides", deck.SlideCount()),
	)
	return reports, nil
}

func (c *DeckComposer) applySlide(ctx context.Context, slide entities.SourceSlide, session *Session) (*entities.Report, error) {
	switch slide.EffectiveLayout() {
	case entities.SourceLayoutTitle:
		return session.AddTitleSlide(ctx, slide.Title, strings.TrimSpace(slide.Body))

	case entities.SourceLayoutTwoContent:
		left, right := slide.Body, ""
		if len(slide.Columns) == 2 {
			left, right = slide.Columns[0], slide.Columns[1]
		}
		var payload entities.Payload
		switch {
		case len(slide.Images) > 0 && strings.TrimSpace(right) == "":
			payload = entities.PathPayload(slide.Images[0])
		default:
			payload = c.builder.Resolve(strings.TrimSpace(right))
		}
		return session.AddTwoContentSlide(ctx, slide.Title, left, payload)

	case entities.SourceLayoutImage:
		if len(slide.Images) == 0 {
			return session.AddImageSlide(ctx, slide.Title, c.builder.Resolve(strings.TrimSpace(slide.Body)))
		}
		return session.AddImageSlide(ctx, slide.Title, entities.PathPayload(slide.Images[0]))

	default:
		return session.AddTextSlide(ctx, slide.Title, slide.Body)
	}
}
