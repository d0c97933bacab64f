// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profview

// A Frame is a Sink that keeps the last payload drawn into it, so
// that the current view can be redrawn later into another Sink. At
// most one of Bars and Grid is set; neither is set after a Clear.
type Frame struct {
	Bars *BarSeries
	Grid *PanelGrid
}

// DrawBars implements Sink.
func (f *Frame) DrawBars(b BarSeries) error {
	*f = Frame{Bars: &b}
	return nil
}

// DrawPanels implements Sink.
func (f *Frame) DrawPanels(g PanelGrid) error {
	*f = Frame{Grid: &g}
	return nil
}

// Clear implements Sink.
func (f *Frame) Clear() error {
	*f = Frame{}
	return nil
}

// Empty reports whether f holds nothing to draw.
func (f *Frame) Empty() bool {
	return f.Bars == nil && f.Grid == nil
}

// Replay draws the payload of f into sink.
func (f *Frame) Replay(sink Sink) error {
	switch {
	case f.Bars != nil:
		return sink.DrawBars(*f.Bars)
	case f.Grid != nil:
		return sink.DrawPanels(*f.Grid)
	}
	return sink.Clear()
}
