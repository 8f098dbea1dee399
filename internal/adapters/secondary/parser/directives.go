package parser

import (
	"strings"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

const (
	notePrefix   = "Note:"
	layoutPrefix = "Layout:"
)

// slideParts is a slide body with its line directives lifted out
type slideParts struct {
	title  string
	body   string
	notes  string
	layout entities.SourceLayout
}

// splitDirectives lifts "Note:" lines into speaker notes and applies
// "Layout:" lines (last one wins), then takes the first heading as title.
func splitDirectives(content string) (slideParts, error) {
	parts := slideParts{layout: entities.SourceLayoutAuto}

	var kept, notes []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if note, ok := strings.CutPrefix(trimmed, notePrefix); ok {
			if note = strings.TrimSpace(note); note != "" {
				notes = append(notes, note)
			}
			continue
		}
		if value, ok := strings.CutPrefix(trimmed, layoutPrefix); ok {
			layout, err := entities.ParseSourceLayout(value)
			if err != nil {
				return parts, err
			}
			parts.layout = layout
			continue
		}
		kept = append(kept, line)
	}

	parts.notes = strings.Join(notes, "\n")
	parts.title, parts.body = cutTitle(kept)
	return parts, nil
}

// cutTitle removes the first ATX heading. "#tag" is not a heading.
func cutTitle(lines []string) (string, string) {
	for i, line := range lines {
		heading, ok := strings.CutPrefix(strings.TrimSpace(line), "#")
		if !ok {
			continue
		}
		heading = strings.TrimLeft(heading, "#")
		if heading != "" && heading[0] != ' ' && heading[0] != '\t' {
			continue
		}
		rest := append(lines[:i:i], lines[i+1:]...)
		return strings.TrimSpace(heading), trimBlankLines(strings.Join(rest, "\n"))
	}
	return "", trimBlankLines(strings.Join(lines, "\n"))
}
