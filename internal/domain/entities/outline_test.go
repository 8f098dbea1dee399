package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutline(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		lead     string
		lines    []OutlineLine
	}{
		{
			name:     "single line",
			markdown: "  Quarterly results  \n",
			lead:     "Quarterly results",
		},
		{
			name:     "single line keeps bullet marker",
			markdown: "- not stripped",
			lead:     "- not stripped",
		},
		{
			name:     "empty input",
			markdown: "",
			lead:     "",
		},
		{
			name:     "whitespace only",
			markdown: " \n\t \n",
			lead:     "",
		},
		{
			name:     "blank lines map to empty level zero",
			markdown: "First\n\n   \nSecond",
			lead:     "First",
			lines: []OutlineLine{
				{Text: "", Level: 0},
				{Text: "", Level: 0},
				{Text: "Second", Level: 0},
			},
		},
		{
			name:     "two spaces and dash",
			markdown: "Lead\n  - item",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "item", Level: 0}},
		},
		{
			name:     "eight spaces and dash",
			markdown: "Lead\n        - item",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "item", Level: 2}},
		},
		{
			name:     "star marker",
			markdown: "Lead\n    * item",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "item", Level: 1}},
		},
		{
			name:     "dash without space is text",
			markdown: "Lead\n-item",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "-item", Level: 0}},
		},
		{
			name:     "plain text is trimmed",
			markdown: "Lead\n    indented text   ",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "indented text", Level: 1}},
		},
		{
			// each tab counts as one whitespace character
			name:     "tabs count once",
			markdown: "Lead\n\t- one tab\n\t\t\t\t- four tabs",
			lead:     "Lead",
			lines: []OutlineLine{
				{Text: "one tab", Level: 0},
				{Text: "four tabs", Level: 1},
			},
		},
		{
			name:     "crlf input",
			markdown: "Lead\r\n    - item\r\n",
			lead:     "Lead",
			lines:    []OutlineLine{{Text: "item", Level: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outline := ParseOutline(tt.markdown)
			assert.Equal(t, tt.lead, outline.Lead)
			assert.Equal(t, tt.lines, outline.Lines)
		})
	}
}

func TestParseOutline_SlideBody(t *testing.T) {
	outline := ParseOutline("Point A\n- Sub A1\n    - Sub A2\n\nPoint B")

	assert.Equal(t, []OutlineLine{
		{Text: "Point A", Level: 0},
		{Text: "Sub A1", Level: 0},
		{Text: "Sub A2", Level: 1},
		{Text: "", Level: 0},
		{Text: "Point B", Level: 0},
	}, outline.Paragraphs())
	assert.Equal(t, 5, outline.Len())
}

func TestParseOutlineIndent(t *testing.T) {
	outline := ParseOutlineIndent("Lead\n  - a\n    - b", 2)
	assert.Equal(t, []OutlineLine{{Text: "a", Level: 1}, {Text: "b", Level: 2}}, outline.Lines)

	// non-positive widths fall back to the default
	outline = ParseOutlineIndent("Lead\n    - a", 0)
	assert.Equal(t, []OutlineLine{{Text: "a", Level: 1}}, outline.Lines)
}

func TestIndentLevel(t *testing.T) {
	assert.Equal(t, 0, IndentLevel("item", 4))
	assert.Equal(t, 0, IndentLevel("   item", 4))
	assert.Equal(t, 1, IndentLevel("     item", 4))
	assert.Equal(t, 3, IndentLevel("            item", 4))
	assert.Equal(t, 1, IndentLevel("    item", 4))
}
