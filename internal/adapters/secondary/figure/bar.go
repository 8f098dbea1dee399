package figure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// BarOptions controls bar chart size and style
type BarOptions struct {
	WidthIn  float64
	HeightIn float64
	DPI      float64
	// Color is a hex RGB string such as "#3B82F6"
	Color    string
	FontSize float64
}

func (o BarOptions) withDefaults() BarOptions {
	if o.WidthIn <= 0 {
		o.WidthIn = 6.4
	}
	if o.HeightIn <= 0 {
		o.HeightIn = 4.8
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Color == "" {
		o.Color = "#3B82F6"
	}
	if o.FontSize <= 0 {
		o.FontSize = 10
	}
	return o
}

// ErrNoData is returned when a chart has nothing to plot
var ErrNoData = errors.New("no data to plot")

// BarChart draws a labelled bar chart. Bars grow from the zero line, so
// negative values point down.
func BarChart(title string, labels []string, values []float64, opts BarOptions) (*Canvas, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	if len(labels) != len(values) {
		return nil, fmt.Errorf("got %d labels for %d values", len(labels), len(values))
	}

	opts = opts.withDefaults()
	c := NewCanvas(opts.WidthIn, opts.HeightIn, opts.DPI)
	if err := c.SetFont(opts.FontSize); err != nil {
		return nil, err
	}
	dc := c.Context()

	width := float64(dc.Width())
	height := float64(dc.Height())
	lineHeight := dc.FontHeight() * 1.6

	left := width * 0.08
	right := width * 0.97
	top := lineHeight * 1.5
	bottom := height - lineHeight*1.5

	if title != "" {
		dc.SetRGB(0.12, 0.16, 0.23)
		dc.DrawStringAnchored(title, width/2, lineHeight*0.75, 0.5, 0.5)
	}

	lo, hi := 0.0, 0.0
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	scale := (bottom - top) / (hi - lo)
	zero := bottom + lo*scale

	dc.SetRGB(0.58, 0.64, 0.72)
	dc.SetLineWidth(1)
	dc.DrawLine(left, zero, right, zero)
	dc.Stroke()

	slot := (right - left) / float64(len(values))
	barWidth := slot * 0.7
	for i, v := range values {
		x := left + float64(i)*slot + (slot-barWidth)/2
		y := zero - v*scale

		dc.SetHexColor(opts.Color)
		dc.DrawRectangle(x, math.Min(y, zero), barWidth, math.Abs(v*scale))
		dc.Fill()

		dc.SetRGB(0.29, 0.33, 0.41)
		valueY := y - lineHeight/2
		if v < 0 {
			valueY = y + lineHeight/2
		}
		dc.DrawStringAnchored(formatValue(v), x+barWidth/2, valueY, 0.5, 0.5)
		dc.DrawStringAnchored(labels[i], x+barWidth/2, bottom+lineHeight*0.75, 0.5, 0.5)
	}

	return c, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
