// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/safehtml/template"

	"golang.org/x/perfview/profchart"
	"golang.org/x/perfview/profview"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>perfview</title></head>
<body>
<h1>{{.State.Session}}</h1>
<form action="/select" method="get">
<select name="session">
{{- range .Sessions}}
<option value="{{.}}"{{if eq . $.State.Session}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
<select name="mode">
{{- range .Modes}}
<option value="{{.String}}"{{if eq .String $.State.Mode.String}} selected{{end}}>{{.Title}}</option>
{{- end}}
</select>
{{- if eq .State.Mode.String "percentage"}}
<select name="function">
<option value="">All functions</option>
{{- range .Functions}}
<option value="{{.}}"{{if eq . $.State.Function}} selected{{end}}>{{.}}</option>
{{- end}}
</select>
{{- end}}
<input type="submit" value="Show">
</form>
{{if .Empty}}<p>Nothing to draw.</p>{{else}}<img src="/chart.png" alt="{{.State.Mode.Title}}">{{end}}
</body>
</html>
`

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	State     profview.State
	Sessions  []string
	Modes     []profview.Mode
	Functions []string
	Empty     bool
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	a.mu.Lock()
	state := a.ctrl.State()
	reg := a.ctrl.Registry()
	data := indexData{
		State:    state,
		Sessions: reg.Names(),
		Modes:    profview.Modes,
		Empty:    a.frame.Empty(),
	}
	if s, ok := reg.Lookup(state.Session); ok {
		for _, p := range profview.Panels(s, "") {
			data.Functions = append(data.Functions, p.Title)
		}
	}
	a.mu.Unlock()

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		errorf("index: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// selectHandler applies the session, mode and function parameters,
// in that order, and redirects to the index page.
func (a *App) selectHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	a.mu.Lock()
	err := a.apply(r)
	a.mu.Unlock()
	if err != nil {
		var uerr *profview.UnknownSessionError
		var ferr *profview.UnknownFunctionError
		switch {
		case errors.As(err, &uerr), errors.As(err, &ferr):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, errBadRequest):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			errorf("select: %v", err)
			http.Error(w, err.Error(), 500)
		}
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var errBadRequest = errors.New("bad request")

// apply runs the selections in r. Every parameter is checked before
// any selection is made, so a request that fails leaves the state
// unchanged. a.mu must be held.
func (a *App) apply(r *http.Request) error {
	reg := a.ctrl.Registry()
	target := a.ctrl.State().Session
	if r.Form.Has("session") {
		target = r.Form.Get("session")
		if _, ok := reg.Lookup(target); !ok {
			return &profview.UnknownSessionError{Name: target}
		}
	}
	var mode profview.Mode
	if r.Form.Has("mode") {
		m, err := profview.ParseMode(r.Form.Get("mode"))
		if err != nil {
			return errors.Join(errBadRequest, err)
		}
		mode = m
	}
	if fn := r.Form.Get("function"); fn != "" {
		s, _ := reg.Lookup(target)
		if _, ok := s.Lookup(fn); !ok {
			return &profview.UnknownFunctionError{Session: target, Name: fn}
		}
	}

	if r.Form.Has("session") {
		if err := a.ctrl.SelectSession(target); err != nil {
			return err
		}
	}
	if r.Form.Has("mode") {
		if err := a.ctrl.SelectMode(mode); err != nil {
			return err
		}
	}
	if r.Form.Has("function") {
		if err := a.ctrl.SelectFunction(r.Form.Get("function")); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) chart(w http.ResponseWriter, r *http.Request, format profchart.Format) {
	a.mu.Lock()
	rend, err := profchart.NewRenderer(format, a.Width, a.Height)
	if err == nil {
		err = a.frame.Replay(rend)
	}
	a.mu.Unlock()
	if err != nil {
		errorf("chart: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}

	var buf bytes.Buffer
	if _, err := rend.WriteTo(&buf); err != nil {
		errorf("chart: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

type sessionsResponse struct {
	Sessions []string `json:"sessions"`
	Default  string   `json:"default"`
	Session  string   `json:"session"`
	Mode     string   `json:"mode"`
	Function string   `json:"function,omitempty"`
}

func (a *App) sessions(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	reg := a.ctrl.Registry()
	state := a.ctrl.State()
	a.mu.Unlock()

	resp := sessionsResponse{
		Sessions: reg.Names(),
		Default:  reg.Default(),
		Session:  state.Session,
		Mode:     state.Mode.String(),
		Function: state.Function,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		errorf("sessions: %v", err)
	}
}

func (a *App) reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "/reload must be called as a POST request", http.StatusMethodNotAllowed)
		return
	}
	if a.Reload == nil {
		http.Error(w, "reloading is not configured", http.StatusNotImplemented)
		return
	}
	reg, err := a.Reload(r.Context())
	if err == nil {
		a.mu.Lock()
		err = a.setRegistry(reg, a.ctrl.State())
		a.mu.Unlock()
	}
	if err != nil {
		errorf("reload: %v", err)
		http.Error(w, err.Error(), 500)
		return
	}
	a.sessions(w, r)
}
