// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profview holds the view state of a profiling session viewer
// and computes what to draw for it.
//
// A Controller owns the selected session, the view Mode and, for
// drill-down, the selected function. Every transition re-renders the
// view into a Sink, which receives ready-to-draw series: a BarSeries
// in BenchmarkView, a PanelGrid in PercentageView, or a Clear when a
// PercentageView has nothing to draw.
//
// A Controller is not safe for concurrent use. Hosts that receive
// selection events on several goroutines must serialize them.
package profview

import (
	"errors"
	"fmt"

	"golang.org/x/perfview/profstat"
)

// A Sink draws render payloads.
type Sink interface {
	// DrawBars draws a bar chart.
	DrawBars(BarSeries) error
	// DrawPanels draws a grid of pie charts.
	DrawPanels(PanelGrid) error
	// Clear blanks the drawing area.
	Clear() error
}

// State is the view state of a Controller.
type State struct {
	Session string
	Mode    Mode
	// Function is the function selected for drill-down, or "".
	Function string
}

// ErrNoSessions is returned by NewController for an empty Registry.
var ErrNoSessions = errors.New("no profiling sessions")

// An UnknownSessionError reports a selection of a session that is not
// in the Registry.
type UnknownSessionError struct {
	Name string
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("unknown session %q", e.Name)
}

// An UnknownFunctionError reports a selection of a function that is
// not in the selected session.
type UnknownFunctionError struct {
	Session, Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("session %q has no function %q", e.Session, e.Name)
}

// A Controller is the state machine of the viewer.
type Controller struct {
	reg   *profstat.Registry
	sink  Sink
	state State
}

// NewController returns a Controller over reg that draws into sink.
// It starts in BenchmarkView on reg.Default(). NewController does not
// draw; call Render to draw the initial view.
func NewController(reg *profstat.Registry, sink Sink) (*Controller, error) {
	if reg.Len() == 0 {
		return nil, ErrNoSessions
	}
	return &Controller{
		reg:   reg,
		sink:  sink,
		state: State{Session: reg.Default(), Mode: BenchmarkView},
	}, nil
}

// Registry returns the sessions c selects from.
func (c *Controller) Registry() *profstat.Registry { return c.reg }

// State returns the current view state.
func (c *Controller) State() State { return c.state }

// SelectSession shows the session named name in the current mode.
//
// If name is not in the Registry, SelectSession returns an
// *UnknownSessionError and leaves the state unchanged. The selected
// function is kept if the new session has a function of that name and
// cleared otherwise.
func (c *Controller) SelectSession(name string) error {
	s, ok := c.reg.Lookup(name)
	if !ok {
		return &UnknownSessionError{name}
	}
	c.state.Session = name
	if c.state.Function != "" {
		if _, ok := s.Lookup(c.state.Function); !ok {
			c.state.Function = ""
		}
	}
	return c.Render()
}

// SelectMode shows the current session in mode m.
func (c *Controller) SelectMode(m Mode) error {
	if !m.valid() {
		return fmt.Errorf("invalid view mode %v", m)
	}
	c.state.Mode = m
	return c.Render()
}

// SelectFunction restricts PercentageView to the function named name
// in the current session. An empty name removes the restriction.
//
// If the current session has no such function, SelectFunction returns
// an *UnknownFunctionError and leaves the state unchanged.
func (c *Controller) SelectFunction(name string) error {
	if name != "" {
		s := c.session()
		if _, ok := s.Lookup(name); !ok {
			return &UnknownFunctionError{s.Name(), name}
		}
	}
	c.state.Function = name
	return c.Render()
}

func (c *Controller) session() *profstat.Session {
	s, _ := c.reg.Lookup(c.state.Session)
	return s
}

// Render draws the current state into the Sink.
func (c *Controller) Render() error {
	s := c.session()
	switch c.state.Mode {
	case PercentageView:
		panels := Panels(s, c.state.Function)
		if len(panels) == 0 {
			return c.sink.Clear()
		}
		grid := LayoutPanels(panels)
		grid.Session = s.Name()
		return c.sink.DrawPanels(grid)
	default:
		return c.sink.DrawBars(Bars(s))
	}
}
