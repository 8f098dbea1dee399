package entities

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultIndentWidth is the number of leading whitespace characters per nesting level
const DefaultIndentWidth = 4

// OutlineLine is a (display text, indent level) pair
type OutlineLine struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Outline is a parsed markdown-like text block. Lead is the first line,
// kept verbatim and always at level 0; Lines holds every following line.
type Outline struct {
	Lead  string        `json:"lead"`
	Lines []OutlineLine `json:"lines,omitempty"`
}

// Len returns the number of paragraphs the outline produces
func (o Outline) Len() int {
	return 1 + len(o.Lines)
}

// Paragraphs returns Lead as a level-0 line followed by Lines
func (o Outline) Paragraphs() []OutlineLine {
	out := make([]OutlineLine, 0, o.Len())
	out = append(out, OutlineLine{Text: o.Lead})
	return append(out, o.Lines...)
}

// ParseOutline parses markdown with the default indent width
func ParseOutline(markdown string) Outline {
	return ParseOutlineIndent(markdown, DefaultIndentWidth)
}

// ParseOutlineIndent converts a markdown-like block into an outline.
// Each leading whitespace character counts once, tabs included.
func ParseOutlineIndent(markdown string, indentWidth int) Outline {
	if indentWidth <= 0 {
		indentWidth = DefaultIndentWidth
	}

	normalized := strings.ReplaceAll(markdown, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(normalized), "\n")

	outline := Outline{Lead: lines[0]}
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			outline.Lines = append(outline.Lines, OutlineLine{})
			continue
		}
		outline.Lines = append(outline.Lines, OutlineLine{
			Text:  stripBullet(trimmed),
			Level: IndentLevel(line, indentWidth),
		})
	}

	return outline
}

// IndentLevel returns floor(leading whitespace characters / indentWidth)
func IndentLevel(line string, indentWidth int) int {
	if indentWidth <= 0 {
		indentWidth = DefaultIndentWidth
	}
	stripped := strings.TrimLeftFunc(line, unicode.IsSpace)
	leading := utf8.RuneCountInString(line) - utf8.RuneCountInString(stripped)
	return leading / indentWidth
}

func stripBullet(trimmed string) string {
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return trimmed[2:]
	}
	return trimmed
}
