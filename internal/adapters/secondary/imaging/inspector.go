package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/fredcamaral/powerbook/internal/domain/entities"
	"github.com/fredcamaral/powerbook/internal/domain/ports"
)

// ErrUnsupportedImage is returned for data no registered decoder understands
var ErrUnsupportedImage = errors.New("unsupported image format")

// Inspector reads pixel dimensions and content type of encoded images
type Inspector struct{}

var _ ports.ImageInspector = (*Inspector)(nil)

// NewInspector creates a new image inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect decodes only the image header
func (i *Inspector) Inspect(data []byte) (*entities.Picture, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrUnsupportedImage)
	}

	mime := mimetype.Detect(data)
	if !mime.Is("image/png") && !mime.Is("image/jpeg") && !mime.Is("image/gif") &&
		!mime.Is("image/bmp") && !mime.Is("image/tiff") && !mime.Is("image/webp") {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	return &entities.Picture{
		Data:        data,
		MIMEType:    mime.String(),
		PixelWidth:  cfg.Width,
		PixelHeight: cfg.Height,
	}, nil
}
