package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// BuilderOptions configures how the builder reads outlines and figures
type BuilderOptions struct {
	WarnLowDPI  bool
	MinDPI      float64
	IndentWidth int
	TempDir     string
}

// BuilderOptionsFrom derives builder options from session configuration
func BuilderOptionsFrom(cfg entities.SessionConfig) BuilderOptions {
	return BuilderOptions{
		WarnLowDPI:  cfg.WarnLowDPI,
		MinDPI:      cfg.GetMinDPI(),
		IndentWidth: cfg.GetIndentWidth(),
		TempDir:     cfg.TempDir,
	}
}

// SlideBuilder pours titles, outlines, images and figures into slide shapes.
// It keeps no state between calls.
type SlideBuilder struct {
	fs        ports.FileSystem
	inspector ports.ImageInspector
	options   BuilderOptions
	logger    *slog.Logger
}

// NewSlideBuilder creates a new slide builder
func NewSlideBuilder(fs ports.FileSystem, inspector ports.ImageInspector, options BuilderOptions, logger *slog.Logger) *SlideBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	if options.MinDPI <= 0 {
		options.MinDPI = entities.SessionConfig{}.GetMinDPI()
	}
	if options.IndentWidth <= 0 {
		options.IndentWidth = entities.DefaultIndentWidth
	}

	return &SlideBuilder{
		fs:        fs,
		inspector: inspector,
		options:   options,
		logger:    logger.With("service", "slide_builder"),
	}
}

// Options returns the builder options
func (b *SlideBuilder) Options() BuilderOptions {
	return b.options
}

// SetTitle sets the title placeholder text verbatim
func (b *SlideBuilder) SetTitle(slide *entities.Slide, title string) error {
	shape, err := slide.Title()
	if err != nil {
		return err
	}
	shape.Text.SetText(title)
	return nil
}

// PopulateText replaces the shape's paragraphs with the parsed outline
func (b *SlideBuilder) PopulateText(shape *entities.Shape, markdown string) error {
	if shape.Kind != entities.ShapeText {
		return &entities.ContentError{
			Payload: entities.TextPayload(markdown),
			Reason:  fmt.Sprintf("element %q holds a picture", shape.Name),
		}
	}
	if shape.Text == nil {
		shape.Text = &entities.TextFrame{}
	}

	outline := entities.ParseOutlineIndent(markdown, b.options.IndentWidth)
	shape.Text.SetText(outline.Lead)
	for _, line := range outline.Lines {
		shape.Text.AddParagraph(line.Text, line.Level)
	}
	return nil
}

// Resolve turns a user-supplied string into a payload: an image path when
// the string names an existing file after home expansion, text otherwise.
func (b *SlideBuilder) Resolve(value string) entities.Payload {
	if value == "" {
		return entities.TextPayload(value)
	}
	path, err := b.fs.ExpandHome(value)
	if err != nil {
		return entities.TextPayload(value)
	}
	if b.fs.Exists(path) {
		return entities.PathPayload(value)
	}
	return entities.TextPayload(value)
}

// Populate fills target with a payload. Text payloads become outlines;
// figures and paths become pictures placed in the target's bounding box.
func (b *SlideBuilder) Populate(ctx context.Context, slide *entities.Slide, target *entities.Shape, payload entities.Payload) ([]entities.Diagnostic, error) {
	if payload.Kind() == entities.PayloadText {
		return nil, b.PopulateText(target, payload.Text())
	}
	return b.PlaceImage(ctx, slide, target, payload)
}

// PlaceImage inserts a figure or image file at the target's left, top and
// width. Height follows the image aspect ratio. Text payloads are rejected.
func (b *SlideBuilder) PlaceImage(ctx context.Context, slide *entities.Slide, target *entities.Shape, payload entities.Payload) ([]entities.Diagnostic, error) {
	var (
		pic         *entities.Picture
		diagnostics []entities.Diagnostic
		err         error
	)

	switch payload.Kind() {
	case entities.PayloadFigure:
		diagnostics = b.checkResolution(payload.Figure())
		pic, err = b.renderFigure(ctx, payload)
	case entities.PayloadPath:
		pic, err = b.readImage(payload)
	default:
		return nil, &entities.ContentError{
			Payload: payload,
			Reason:  "not a figure or an existing file",
		}
	}
	if err != nil {
		return diagnostics, err
	}

	box := target.Geometry
	if target.Kind == entities.ShapePicture {
		// refill an existing picture in place
		target.Picture = pic
		target.Geometry = entities.PictureGeometry(pic, box.Left, box.Top, box.Width)
		return diagnostics, nil
	}

	inserted := slide.AddPicture(pic, box.Left, box.Top, box.Width)
	b.logger.Debug("Inserted picture",
		slog.String("slide_id", slide.ID),
		slog.String("shape", inserted.Name),
		slog.String("mime_type", pic.MIMEType),
		slog.Int("pixel_width", pic.PixelWidth),
		slog.Int("pixel_height", pic.PixelHeight),
	)
	return diagnostics, nil
}

func (b *SlideBuilder) checkResolution(fig entities.Figure) []entities.Diagnostic {
	if !b.options.WarnLowDPI {
		return nil
	}
	dpi := fig.DPI()
	if dpi >= b.options.MinDPI {
		return nil
	}

	b.logger.Warn("Figure resolution is low",
		slog.Float64("dpi", dpi),
		slog.Float64("min_dpi", b.options.MinDPI),
	)
	return []entities.Diagnostic{{
		Severity: entities.SeverityWarning,
		Code:     entities.DiagnosticLowDPI,
		Message:  fmt.Sprintf("figure resolution %.0f dpi is below %.0f dpi; print and display quality may suffer", dpi, b.options.MinDPI),
	}}
}

// renderFigure materializes the figure in a temporary PNG that lives only
// for this call.
func (b *SlideBuilder) renderFigure(ctx context.Context, payload entities.Payload) (*entities.Picture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tmp, err := b.fs.CreateTemp(b.options.TempDir, "powerbook-figure-*.png")
	if err != nil {
		return nil, fmt.Errorf("creating temporary figure file: %w", err)
	}
	name := tmp.Name()
	defer func() {
		if rmErr := b.fs.Remove(name); rmErr != nil {
			b.logger.Warn("Failed to remove temporary figure file",
				slog.String("path", name),
				slog.String("error", rmErr.Error()),
			)
		}
	}()
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("closing temporary figure file: %w", err)
	}

	if err := payload.Figure().SavePNG(name); err != nil {
		return nil, fmt.Errorf("rendering figure: %w", err)
	}

	data, err := b.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading rendered figure: %w", err)
	}
	pic, err := b.inspector.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("inspecting rendered figure: %w", err)
	}
	return pic, nil
}

func (b *SlideBuilder) readImage(payload entities.Payload) (*entities.Picture, error) {
	path, err := b.fs.ExpandHome(payload.Path())
	if err != nil {
		return nil, fmt.Errorf("expanding image path: %w", err)
	}
	if !b.fs.Exists(path) {
		return nil, &entities.ContentError{Payload: payload, Reason: "file does not exist"}
	}

	data, err := b.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	pic, err := b.inspector.Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, err)
	}
	pic.Source = path
	return pic, nil
}
