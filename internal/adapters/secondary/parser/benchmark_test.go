package parser

import (
	"fmt"
	"strings"
	"testing"
)

func syntheticDeck(slides int) []byte {
	var sb strings.Builder
	sb.WriteString("---\ntitle: Bench\ntemplate: wide\n---\n")
	for i := 0; i < slides; i++ {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		fmt.Fprintf(&sb, "# Slide %d\nLayout: text\n- point\n  - detail\n\t- deeper\n![chart](img/%d.png)\nNote: say %d\n", i, i, i)
	}
	return []byte(sb.String())
}

func BenchmarkDeckParser_Parse(b *testing.B) {
	parser := NewDeckParser(nil)

	for _, n := range []int{1, 20, 200} {
		content := syntheticDeck(n)
		b.Run(fmt.Sprintf("slides=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(content)))
			for b.Loop() {
				if _, err := parser.Parse(b.Context(), content, "/decks"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSplitDirectives(b *testing.B) {
	body := "# Title\nLayout: two-content\nleft\n|||\nright\nNote: one\nNote: two"
	for b.Loop() {
		if _, err := splitDirectives(body); err != nil {
			b.Fatal(err)
		}
	}
}
