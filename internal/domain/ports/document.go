package ports

import (
	"context"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

//go:generate mockery --name DocumentStore --output ../../../test/mocks --outpkg mocks

// DocumentStore reads and writes presentation files
type DocumentStore interface {
	// Load reads the document at path
	Load(ctx context.Context, path string) (*entities.Deck, error)

	// Save writes the full deck to path, replacing any existing file
	Save(ctx context.Context, deck *entities.Deck, path string) error
}

// ImageInspector identifies image data
type ImageInspector interface {
	// Inspect returns a picture carrying data, its MIME type and pixel size.
	// Data that is not a supported image yields entities.ErrUnsupportedImage.
	Inspect(data []byte) (*entities.Picture, error)
}
