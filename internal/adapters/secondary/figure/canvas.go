package figure

import (
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/fredcamaral/powerbook/internal/domain/entities"
)

// DefaultDPI matches the resolution plotting libraries use for PNG output
const DefaultDPI = 100.0

// Canvas is a drawable figure of a fixed physical size
type Canvas struct {
	ctx *gg.Context
	dpi float64
}

var _ entities.Figure = (*Canvas)(nil)

// NewCanvas creates a white canvas of width x height inches at dpi
func NewCanvas(widthIn, heightIn, dpi float64) *Canvas {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	w := int(math.Round(widthIn * dpi))
	h := int(math.Round(heightIn * dpi))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	return &Canvas{ctx: dc, dpi: dpi}
}

// Context exposes the drawing context
func (c *Canvas) Context() *gg.Context {
	return c.ctx
}

// DPI reports the canvas resolution
func (c *Canvas) DPI() float64 {
	return c.dpi
}

// SavePNG renders the canvas to path
func (c *Canvas) SavePNG(path string) error {
	if err := c.ctx.SavePNG(path); err != nil {
		return fmt.Errorf("saving figure: %w", err)
	}
	return nil
}

// SetFont selects the embedded Go font at size points
func (c *Canvas) SetFont(size float64) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parsing embedded font: %w", err)
	}
	c.ctx.SetFontFace(truetype.NewFace(font, &truetype.Options{
		Size: size,
		DPI:  c.dpi,
	}))
	return nil
}
