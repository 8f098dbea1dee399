package parser

import (
	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// sourceFromFrontmatter reads deck-level settings from frontmatter
func sourceFromFrontmatter(frontmatter map[string]interface{}) *entities.DeckSource {
	src := &entities.DeckSource{}
	if title, ok := getStringFromMap(frontmatter, "title"); ok {
		src.Title = title
	}
	if author, ok := getStringFromMap(frontmatter, "author"); ok {
		src.Author = author
	}
	if tmpl, ok := getStringFromMap(frontmatter, "template"); ok {
		src.Template = tmpl
	}
	return src
}

// getStringFromMap safely extracts a string value from a map
func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if m == nil {
		return "", false
	}

	val, exists := m[key]
	if !exists {
		return "", false
	}

	str, ok := val.(string)
	return str, ok
}
