package ports

import (
	"context"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// DeckSourceParser parses a markdown deck file into slide descriptions
type DeckSourceParser interface {
	// Parse parses content. Relative image references resolve against baseDir.
	Parse(ctx context.Context, content []byte, baseDir string) (*entities.DeckSource, error)
}
