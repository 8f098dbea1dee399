package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

func TestSplitDirectives(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    slideParts
	}{
		{
			name:    "note and title",
			content: "# Title\nBody\nNote: Remember this",
			want:    slideParts{title: "Title", body: "Body", notes: "Remember this", layout: entities.SourceLayoutAuto},
		},
		{
			name:    "indented notes keep order",
			content: "Body\n   Note: first\nNote:second",
			want:    slideParts{body: "Body", notes: "first\nsecond", layout: entities.SourceLayoutAuto},
		},
		{
			name:    "empty note is dropped",
			content: "Body\nNote:   ",
			want:    slideParts{body: "Body", layout: entities.SourceLayoutAuto},
		},
		{
			name:    "last layout wins",
			content: "Layout: title\n# T\nLayout: Two-Content\nbody",
			want:    slideParts{title: "T", body: "body", layout: entities.SourceLayoutTwoContent},
		},
		{
			name:    "layout alias",
			content: "Layout: columns",
			want:    slideParts{layout: entities.SourceLayoutTwoContent},
		},
		{
			name:    "heading after text",
			content: "intro\n### Deep",
			want:    slideParts{title: "Deep", body: "intro", layout: entities.SourceLayoutAuto},
		},
		{
			name:    "hashtag is not a heading",
			content: "#tag\n## Real",
			want:    slideParts{title: "Real", body: "#tag", layout: entities.SourceLayoutAuto},
		},
		{
			name:    "no heading keeps indentation",
			content: "\n  - a\n",
			want:    slideParts{body: "  - a", layout: entities.SourceLayoutAuto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitDirectives(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitDirectives_UnknownLayout(t *testing.T) {
	_, err := splitDirectives("# T\nLayout: poster")
	assert.Error(t, err)
}

func TestCutTitle_DoesNotAliasInput(t *testing.T) {
	lines := []string{"# A", "b", "c"}
	title, rest := cutTitle(lines)
	assert.Equal(t, "A", title)
	assert.Equal(t, "b\nc", rest)
	assert.Equal(t, []string{"# A", "b", "c"}, lines)
}
