// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profchart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"golang.org/x/perfview/profview"
)

// pie implements plot.Plotter for one breakdown panel. Wedges start at
// twelve o'clock and run counterclockwise, each labeled with its
// callee outside the circle and its share of the whole inside.
type pie struct {
	labels []string
	sizes  []float64
	style  text.Style
}

func newPie(p profview.Panel, style text.Style) *pie {
	style.XAlign = draw.XCenter
	style.YAlign = draw.YCenter
	pp := &pie{labels: p.Labels, sizes: make([]float64, len(p.Sizes)), style: style}
	for i, s := range p.Sizes {
		// A session whose callees exceed 100% has a negative
		// "other"; it gets no wedge.
		if s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s) {
			pp.sizes[i] = s
		}
	}
	return pp
}

// Plot implements the plot.Plotter interface.
func (p *pie) Plot(c draw.Canvas, plt *plot.Plot) {
	var total float64
	for _, s := range p.sizes {
		total += s
	}
	w, h := c.Max.X-c.Min.X, c.Max.Y-c.Min.Y
	r := 0.4 * w
	if h < w {
		r = 0.4 * h
	}
	if r <= 0 {
		return
	}
	center := vg.Point{X: c.Min.X + w/2, Y: c.Min.Y + h/2}

	angle := math.Pi / 2
	for i, size := range p.sizes {
		if size == 0 || total == 0 {
			c.FillText(p.style, polar(center, 1.15*r, angle), p.labels[i])
			continue
		}
		sweep := 2 * math.Pi * size / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Line(polar(center, r, angle))
		wedge.Arc(center, r, angle, sweep)
		wedge.Close()
		c.SetColor(plotutil.Color(i))
		c.Fill(wedge)

		mid := angle + sweep/2
		c.FillText(p.style, polar(center, 0.6*r, mid), fmt.Sprintf("%3.1f%%", 100*size/total))
		c.FillText(p.style, polar(center, 1.15*r, mid), p.labels[i])
		angle += sweep
	}
}

// polar returns the point at distance r from center in direction a.
func polar(center vg.Point, r vg.Length, a float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(a)),
		Y: center.Y + r*vg.Length(math.Sin(a)),
	}
}
