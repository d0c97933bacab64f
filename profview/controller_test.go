// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profview

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/perfview/profstat"
)

// recorder is a Sink that remembers the last thing drawn.
type recorder struct {
	draws   int
	bars    *BarSeries
	grid    *PanelGrid
	cleared bool
	err     error
}

func (r *recorder) reset() {
	r.bars, r.grid, r.cleared = nil, nil, false
	r.draws++
}

func (r *recorder) DrawBars(b BarSeries) error {
	r.reset()
	r.bars = &b
	return r.err
}

func (r *recorder) DrawPanels(g PanelGrid) error {
	r.reset()
	r.grid = &g
	return r.err
}

func (r *recorder) Clear() error {
	r.reset()
	r.cleared = true
	return r.err
}

func s2() *profstat.Session {
	return profstat.NewSession("s2", []*profstat.FunctionStat{
		profstat.NewFunctionStat("total", 900, 1, nil),
		profstat.NewFunctionStat("a", 300, 1, nil),
		profstat.NewFunctionStat("c", 200, 5, slices("y", 10, "z", 50)),
		profstat.NewFunctionStat("d", 100, 5, slices("y", 25)),
	})
}

func mustRegistry(t *testing.T) *profstat.Registry {
	t.Helper()
	reg, err := profstat.NewRegistry(s1())
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func newController(t *testing.T, sessions ...*profstat.Session) (*Controller, *recorder) {
	t.Helper()
	reg, err := profstat.NewRegistry(sessions...)
	if err != nil {
		t.Fatal(err)
	}
	rec := new(recorder)
	c, err := NewController(reg, rec)
	if err != nil {
		t.Fatal(err)
	}
	return c, rec
}

func TestNewController(t *testing.T) {
	c, rec := newController(t, s1(), s2())
	if want := (State{Session: "s2", Mode: BenchmarkView}); c.State() != want {
		t.Errorf("initial state = %+v, want %+v", c.State(), want)
	}
	if rec.draws != 0 {
		t.Errorf("NewController drew %d times, want 0", rec.draws)
	}
	if err := c.Render(); err != nil {
		t.Fatal(err)
	}
	if rec.bars == nil || rec.bars.Session != "s2" {
		t.Errorf("initial render = %+v, want bars of s2", rec)
	}

	empty, _ := profstat.NewRegistry()
	if _, err := NewController(empty, rec); !errors.Is(err, ErrNoSessions) {
		t.Errorf("NewController(empty) = %v, want ErrNoSessions", err)
	}
}

func TestSelectSession(t *testing.T) {
	c, rec := newController(t, s1(), s2())
	if err := c.SelectSession("s1"); err != nil {
		t.Fatal(err)
	}
	want := BarSeries{Session: "s1", Categories: []string{"a", "b"}, Values: []float64{120, 80}}
	if rec.bars == nil {
		t.Fatalf("SelectSession drew %+v, want bars", rec)
	}
	if diff := cmp.Diff(want, *rec.bars); diff != "" {
		t.Errorf("bars (-want +got):\n%s", diff)
	}

	draws := rec.draws
	err := c.SelectSession("s3")
	var uerr *UnknownSessionError
	if !errors.As(err, &uerr) || uerr.Name != "s3" {
		t.Fatalf("SelectSession(s3) = %v, want *UnknownSessionError", err)
	}
	if c.State().Session != "s1" {
		t.Errorf("session after failed selection = %q, want s1", c.State().Session)
	}
	if rec.draws != draws {
		t.Errorf("failed selection redrew the view")
	}
}

func TestSelectModeThenSession(t *testing.T) {
	c, rec := newController(t, s1(), s2())
	if err := c.SelectSession("s1"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectMode(PercentageView); err != nil {
		t.Fatal(err)
	}
	want := PanelGrid{Session: "s1", Rows: 1, Cols: 1, Panels: []Panel{
		{Title: "a", Labels: []string{"x", "other"}, Sizes: []float64{30, 70}},
	}}
	if rec.grid == nil {
		t.Fatalf("PercentageView drew %+v, want panels", rec)
	}
	if diff := cmp.Diff(want, *rec.grid); diff != "" {
		t.Errorf("s1 panels (-want +got):\n%s", diff)
	}

	// The mode persists across a session change.
	if err := c.SelectSession("s2"); err != nil {
		t.Fatal(err)
	}
	want = PanelGrid{Session: "s2", Rows: 1, Cols: 2, Panels: []Panel{
		{Title: "c", Labels: []string{"y", "z", "other"}, Sizes: []float64{10, 50, 40}},
		{Title: "d", Labels: []string{"y", "other"}, Sizes: []float64{25, 75}},
	}}
	if rec.grid == nil {
		t.Fatalf("session change drew %+v, want panels", rec)
	}
	if diff := cmp.Diff(want, *rec.grid); diff != "" {
		t.Errorf("s2 panels (-want +got):\n%s", diff)
	}

	// And the session persists across a mode change.
	if err := c.SelectMode(BenchmarkView); err != nil {
		t.Fatal(err)
	}
	if rec.bars == nil || rec.bars.Session != "s2" {
		t.Errorf("mode change drew %+v, want bars of s2", rec)
	}
}

func TestPercentageViewNothingToDraw(t *testing.T) {
	bare := profstat.NewSession("bare", []*profstat.FunctionStat{
		profstat.NewFunctionStat("total", 10, 1, nil),
	})
	c, rec := newController(t, bare)
	if err := c.SelectMode(PercentageView); err != nil {
		t.Fatalf("SelectMode with nothing to draw: %v", err)
	}
	if !rec.cleared {
		t.Errorf("drew %+v, want Clear", rec)
	}

	empty := profstat.NewSession("empty", nil)
	c, rec = newController(t, empty)
	if err := c.Render(); err != nil || rec.bars == nil || len(rec.bars.Values) != 0 {
		t.Errorf("empty session bar view = %+v, %v; want empty bars", rec, err)
	}
}

func TestSelectModeInvalid(t *testing.T) {
	c, _ := newController(t, s1())
	if err := c.SelectMode(Mode(9)); err == nil {
		t.Errorf("SelectMode(9) succeeded")
	}
	if c.State().Mode != BenchmarkView {
		t.Errorf("mode changed to %v by an invalid selection", c.State().Mode)
	}
}

func TestSelectFunction(t *testing.T) {
	c, rec := newController(t, s1(), s2())
	if err := c.SelectMode(PercentageView); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectFunction("d"); err != nil {
		t.Fatal(err)
	}
	if rec.grid == nil || len(rec.grid.Panels) != 1 || rec.grid.Panels[0].Title != "d" {
		t.Fatalf("drill-down drew %+v, want the panel of d", rec)
	}

	// Unknown functions are rejected without changing the state.
	err := c.SelectFunction("nope")
	var ferr *UnknownFunctionError
	if !errors.As(err, &ferr) || ferr.Session != "s2" || ferr.Name != "nope" {
		t.Fatalf("SelectFunction(nope) = %v, want *UnknownFunctionError", err)
	}
	if c.State().Function != "d" {
		t.Errorf("function after failed selection = %q, want d", c.State().Function)
	}

	// a exists in both sessions; d only in s2.
	if err := c.SelectFunction("a"); err != nil {
		t.Fatal(err)
	}
	if !rec.cleared {
		t.Errorf("s2's a has no breakdown; drew %+v, want Clear", rec)
	}
	if err := c.SelectSession("s1"); err != nil {
		t.Fatal(err)
	}
	if c.State().Function != "a" || rec.grid == nil || rec.grid.Panels[0].Title != "a" {
		t.Errorf("after switching to s1: state %+v, drew %+v; want panel of a", c.State(), rec)
	}
	if err := c.SelectSession("s2"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectFunction("d"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectSession("s1"); err != nil {
		t.Fatal(err)
	}
	if c.State().Function != "" {
		t.Errorf("s1 has no d, but selection kept %q", c.State().Function)
	}

	// BenchmarkView ignores the selected function.
	if err := c.SelectFunction("b"); err != nil {
		t.Fatal(err)
	}
	if err := c.SelectMode(BenchmarkView); err != nil {
		t.Fatal(err)
	}
	if rec.bars == nil || len(rec.bars.Categories) != 2 {
		t.Errorf("BenchmarkView with a selected function drew %+v", rec)
	}

	if err := c.SelectFunction(""); err != nil || c.State().Function != "" {
		t.Errorf("clearing the function: %v, state %+v", err, c.State())
	}
}

func TestRenderSinkError(t *testing.T) {
	c, rec := newController(t, s1(), s2())
	rec.err = errors.New("canvas gone")
	if err := c.SelectSession("s1"); err == nil {
		t.Errorf("SelectSession ignored the sink error")
	}
	if c.State().Session != "s1" {
		t.Errorf("state = %+v, want the selection applied", c.State())
	}
}
