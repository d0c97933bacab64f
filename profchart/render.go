// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profchart draws profview payloads with gonum/plot.
//
// A Renderer is a profview.Sink. Each draw replaces the picture it
// holds, and WriteTo encodes the current picture as PNG, SVG or PDF.
package profchart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"golang.org/x/perfview/profview"
)

// A Format is an image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// ParseFormat parses a format name such as "png" or ".svg".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case PNG, SVG, PDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q (want png, svg or pdf)", s)
}

// ContentType returns the MIME type of images in format f.
func (f Format) ContentType() string {
	switch f {
	case SVG:
		return "image/svg+xml"
	case PDF:
		return "application/pdf"
	}
	return "image/png"
}

// DefaultWidth and DefaultHeight are the size of a Renderer created
// with zero dimensions.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// skyblue is the bar color.
var skyblue = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}

// A Renderer draws profview payloads into an image.
type Renderer struct {
	format        Format
	width, height vg.Length
	canvas        vg.CanvasWriterTo
}

// NewRenderer returns a Renderer of the given format and size. It
// starts out holding a blank picture.
func NewRenderer(format Format, width, height vg.Length) (*Renderer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	r := &Renderer{format: format, width: width, height: height}
	r.canvas = r.newCanvas()
	return r, nil
}

// Format returns the encoding of r.
func (r *Renderer) Format() Format { return r.format }

func (r *Renderer) newCanvas() vg.CanvasWriterTo {
	switch r.format {
	case SVG:
		return vgsvg.New(r.width, r.height)
	case PDF:
		return vgpdf.New(r.width, r.height)
	}
	return vgimg.PngCanvas{Canvas: vgimg.New(r.width, r.height)}
}

// DrawBars draws a bar chart of average times.
func (r *Renderer) DrawBars(bars profview.BarSeries) error {
	pl := plot.New()
	pl.Title.Text = "Function Average Times"
	pl.X.Label.Text = "Function Name"
	pl.Y.Label.Text = "Average (ns)"

	if len(bars.Values) > 0 {
		bc, err := plotter.NewBarChart(plotter.Values(bars.Values), barWidth(r.width, len(bars.Values)))
		if err != nil {
			return err
		}
		bc.Color = skyblue
		bc.LineStyle.Width = 0
		pl.Add(bc)
		pl.NominalX(bars.Categories...)
	}

	pl.X.Tick.Label.Rotation = math.Pi / 4
	pl.X.Tick.Label.XAlign = draw.XRight
	pl.X.Tick.Label.YAlign = draw.YTop

	c := r.newCanvas()
	pl.Draw(draw.New(c))
	r.canvas = c
	return nil
}

// barWidth spreads n bars over most of a chart of width w.
func barWidth(w vg.Length, n int) vg.Length {
	bw := w * 0.6 / vg.Length(n)
	if bw < vg.Points(2) {
		bw = vg.Points(2)
	}
	return bw
}

// DrawPanels draws one pie chart per panel, laid out in grid.
func (r *Renderer) DrawPanels(grid profview.PanelGrid) error {
	c := r.newCanvas()
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: grid.Rows,
		Cols: grid.Cols,
		PadX: vg.Millimeter,
		PadY: vg.Millimeter,
	}
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			p, ok := grid.At(row, col)
			if !ok {
				continue
			}
			pl := plot.New()
			pl.Title.Text = p.Title
			pl.HideAxes()
			pl.Add(newPie(p, pl.X.Tick.Label))
			pl.Draw(tiles.At(dc, col, row))
		}
	}
	r.canvas = c
	return nil
}

// Clear replaces the picture with a blank one.
func (r *Renderer) Clear() error {
	r.canvas = r.newCanvas()
	return nil
}

// WriteTo encodes the current picture to w.
func (r *Renderer) WriteTo(w io.Writer) (int64, error) {
	return r.canvas.WriteTo(w)
}
