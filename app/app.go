// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the profiling session viewer as a web page.
// Construct an App with New and call RegisterOnMux to connect it with
// an HTTP server.
package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"gonum.org/v1/plot/vg"

	"golang.org/x/perfview/profchart"
	"golang.org/x/perfview/profstat"
	"golang.org/x/perfview/profview"
)

// App manages the viewer state shared by all clients. Selections from
// concurrent requests are applied one at a time.
type App struct {
	// Width and Height are the size of rendered charts.
	Width, Height vg.Length

	// Reload, if set, loads a fresh Registry for POST /reload.
	Reload func(context.Context) (*profstat.Registry, error)

	mu    sync.Mutex
	ctrl  *profview.Controller
	frame *profview.Frame
}

// New returns an App over the sessions of reg, showing reg.Default()
// in BenchmarkView.
func New(reg *profstat.Registry) (*App, error) {
	a := &App{Width: profchart.DefaultWidth, Height: profchart.DefaultHeight}
	if err := a.setRegistry(reg, profview.State{}); err != nil {
		return nil, err
	}
	return a, nil
}

// setRegistry replaces the Controller with one over reg, restoring as
// much of old as reg still has. a.mu must be held or a must not be
// shared yet.
func (a *App) setRegistry(reg *profstat.Registry, old profview.State) error {
	f := new(profview.Frame)
	ctrl, err := profview.NewController(reg, f)
	if err != nil {
		return err
	}
	if old.Session != "" {
		if err := ctrl.SelectSession(old.Session); err != nil {
			// The session is gone; stay on the default.
			var uerr *profview.UnknownSessionError
			if !errors.As(err, &uerr) {
				return err
			}
		}
	}
	if err := ctrl.SelectMode(old.Mode); err != nil {
		return err
	}
	if old.Function != "" {
		if err := ctrl.SelectFunction(old.Function); err != nil {
			// The function is gone; show all of them.
			var ferr *profview.UnknownFunctionError
			if !errors.As(err, &ferr) {
				return err
			}
		}
	}
	if err := ctrl.Render(); err != nil {
		return err
	}
	a.ctrl, a.frame = ctrl, f
	return nil
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	mux.HandleFunc("/", a.index)
	mux.HandleFunc("/select", a.selectHandler)
	mux.HandleFunc("/sessions", a.sessions)
	mux.HandleFunc("/reload", a.reload)
	for _, f := range []profchart.Format{profchart.PNG, profchart.SVG, profchart.PDF} {
		f := f
		mux.HandleFunc("/chart."+string(f), func(w http.ResponseWriter, r *http.Request) {
			a.chart(w, r, f)
		})
	}
}

func errorf(format string, args ...interface{}) {
	log.Printf(format, args...)
}
