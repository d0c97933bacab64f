// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profview

import "golang.org/x/perfview/profstat"

// A BarSeries is the payload of BenchmarkView: one bar per category.
// Categories and Values are index-aligned.
type BarSeries struct {
	Session    string
	Categories []string
	Values     []float64 // average nanoseconds
}

// A Panel is one pie of PercentageView. Labels and Sizes are
// index-aligned and Sizes sums to 100.
type Panel struct {
	Title  string
	Labels []string
	Sizes  []float64
}

// A PanelGrid lays out panels in row-major order.
// Cells at index len(Panels) and beyond are blank.
type PanelGrid struct {
	Session    string
	Rows, Cols int
	Panels     []Panel
}

// MaxCols is the maximum number of columns of a PanelGrid.
const MaxCols = 3

// LayoutPanels arranges panels in a grid of min(len(panels), MaxCols)
// columns and as many rows as needed.
func LayoutPanels(panels []Panel) PanelGrid {
	if len(panels) == 0 {
		return PanelGrid{}
	}
	cols := len(panels)
	if cols > MaxCols {
		cols = MaxCols
	}
	rows := (len(panels) + cols - 1) / cols
	return PanelGrid{Rows: rows, Cols: cols, Panels: panels}
}

// At returns the panel in the given cell, or false if the cell is
// blank or outside the grid.
func (g PanelGrid) At(row, col int) (Panel, bool) {
	if row < 0 || col < 0 || row >= g.Rows || col >= g.Cols {
		return Panel{}, false
	}
	i := row*g.Cols + col
	if i >= len(g.Panels) {
		return Panel{}, false
	}
	return g.Panels[i], true
}

// Bars computes the BenchmarkView payload of s.
func Bars(s *profstat.Session) BarSeries {
	ranked := profstat.RankForBarGraph(s.Functions())
	bars := BarSeries{
		Session:    s.Name(),
		Categories: make([]string, len(ranked)),
		Values:     make([]float64, len(ranked)),
	}
	for i, f := range ranked {
		bars.Categories[i] = f.Name()
		bars.Values[i] = float64(f.Average())
	}
	return bars
}

// Panels computes the PercentageView panels of s: one per function
// with a breakdown, in session order. If function is not empty, the
// result holds only the panel of the function that s.Lookup(function)
// finds. The result is empty when there is nothing to draw.
func Panels(s *profstat.Session, function string) []Panel {
	if function != "" {
		f, ok := s.Lookup(function)
		if !ok || f.Breakdown() == nil {
			return nil
		}
		return []Panel{panel(f)}
	}
	var panels []Panel
	for _, f := range profstat.WithBreakdown(s.Functions()) {
		panels = append(panels, panel(f))
	}
	return panels
}

func panel(f *profstat.FunctionStat) Panel {
	b := f.Breakdown()
	return Panel{Title: f.Name(), Labels: b.Labels(), Sizes: b.Percentages()}
}
