package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// columnSeparator splits the two bodies of a two-content slide
const columnSeparator = "|||"

// imageLineRe matches a line holding nothing but an image reference
var imageLineRe = regexp.MustCompile(`^\s*!\[[^\]]*\]\([^)]*\)\s*$`)

// DeckParser parses markdown deck files using Goldmark
type DeckParser struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

var _ ports.DeckSourceParser = (*DeckParser)(nil)

// NewDeckParser creates a new Goldmark-based deck parser
func NewDeckParser(logger *slog.Logger) *DeckParser {
	if logger == nil {
		logger = slog.Default()
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
	)

	return &DeckParser{
		md:     md,
		logger: logger.With("adapter", "parser"),
	}
}

// Parse parses a whole deck. Relative image references resolve against baseDir.
func (p *DeckParser) Parse(ctx context.Context, content []byte, baseDir string) (*entities.DeckSource, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	frontmatter, remaining := extractFrontmatter(content)

	src := sourceFromFrontmatter(frontmatter)
	for i, slideContent := range splitSlides(remaining) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slide, err := p.parseSlide(slideContent, i, baseDir)
		if err != nil {
			return nil, fmt.Errorf("parsing slide %d: %w", i+1, err)
		}
		src.Slides = append(src.Slides, slide)
	}

	p.logger.Debug("Parsed deck source",
		slog.Int("slides", len(src.Slides)),
		slog.String("template", src.Template),
	)
	return src, nil
}

// parseSlide parses a single slide's content
func (p *DeckParser) parseSlide(content []byte, index int, baseDir string) (entities.SourceSlide, error) {
	lifted, err := splitDirectives(string(content))
	if err != nil {
		return entities.SourceSlide{Index: index}, err
	}
	slide := entities.SourceSlide{
		Index:  index,
		Title:  lifted.title,
		Notes:  lifted.notes,
		Layout: lifted.layout,
	}

	parts := splitColumns(lifted.body)
	for i, part := range parts {
		images := p.images(part, baseDir)
		slide.Images = append(slide.Images, images...)
		if len(images) > 0 {
			parts[i] = stripImageLines(part)
		}
	}

	if len(parts) > 1 {
		slide.Columns = parts
	} else {
		slide.Body = parts[0]
	}
	return slide, nil
}

// images collects image destinations from the markdown AST
func (p *DeckParser) images(body, baseDir string) []string {
	source := []byte(body)
	doc := p.md.Parser().Parse(text.NewReader(source))

	var paths []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			if dest := resolveImage(string(img.Destination), baseDir); dest != "" {
				paths = append(paths, dest)
			}
		}
		return ast.WalkContinue, nil
	})
	return paths
}

func resolveImage(dest, baseDir string) string {
	switch {
	case dest == "":
		return ""
	case strings.Contains(dest, "://"):
		// remote images are not fetched
		return ""
	case strings.HasPrefix(dest, "~"), filepath.IsAbs(dest), baseDir == "":
		return dest
	default:
		return filepath.Join(baseDir, filepath.FromSlash(dest))
	}
}

func stripImageLines(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !imageLineRe.MatchString(line) {
			kept = append(kept, line)
		}
	}
	return trimBlankLines(strings.Join(kept, "\n"))
}

// splitColumns splits a body on separator lines. Anything past the second
// column is folded into it.
func splitColumns(body string) []string {
	var parts []string
	var current []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == columnSeparator && len(parts) < 1 {
			parts = append(parts, trimBlankLines(strings.Join(current, "\n")))
			current = nil
			continue
		}
		current = append(current, line)
	}
	return append(parts, trimBlankLines(strings.Join(current, "\n")))
}

// trimBlankLines removes leading and trailing blank lines but keeps the
// indentation of the first line.
func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// extractFrontmatter extracts YAML frontmatter from markdown content
func extractFrontmatter(content []byte) (map[string]interface{}, []byte) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1

	for i := 1; i < len(lines); i++ {
		line := bytes.TrimSpace(lines[i])
		if bytes.Equal(line, []byte("---")) {
			endIndex = i
			break
		}
	}

	if endIndex == -1 {
		return nil, content
	}

	frontmatterBytes := bytes.Join(lines[1:endIndex], []byte("\n"))

	var frontmatter map[string]interface{}
	if len(bytes.TrimSpace(frontmatterBytes)) == 0 {
		frontmatter = make(map[string]interface{})
	} else if err := yaml.Unmarshal(frontmatterBytes, &frontmatter); err != nil {
		// Not frontmatter after all; the block is a slide separator
		return nil, content
	}

	return frontmatter, bytes.Join(lines[endIndex+1:], []byte("\n"))
}

// splitSlides splits content into individual slides on "---" lines
func splitSlides(content []byte) [][]byte {
	var slides [][]byte
	var current []string

	flush := func() {
		slide := trimBlankLines(strings.Join(current, "\n"))
		if strings.TrimSpace(slide) != "" {
			slides = append(slides, []byte(slide))
		}
		current = nil
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "---" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return slides
}
