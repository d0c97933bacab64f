// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"golang.org/x/perfview/internal/timescale"
	"golang.org/x/perfview/profchart"
	"golang.org/x/perfview/profstat"
	"golang.org/x/perfview/profview"
)

// viewer holds the view state shared by all tool calls.
type viewer struct {
	out string

	mu    sync.Mutex
	ctrl  *profview.Controller
	frame profview.Frame
}

func newViewer(reg *profstat.Registry, out string) (*viewer, error) {
	v := &viewer{out: out}
	ctrl, err := profview.NewController(reg, &v.frame)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Render(); err != nil {
		return nil, err
	}
	v.ctrl = ctrl
	return v, nil
}

func (v *viewer) server() *server.MCPServer {
	s := server.NewMCPServer(
		"perfview",
		"1.0.0",
		server.WithLogging(),
	)

	s.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the profiling sessions. The selected session is marked with *."),
	), v.listSessions)

	s.AddTool(mcp.NewTool("select_session",
		mcp.WithDescription("Select the profiling session to view."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Session name, as listed by list_sessions"),
		),
	), v.selectSession)

	s.AddTool(mcp.NewTool("select_mode",
		mcp.WithDescription("Select the view: benchmark compares function average times, percentage shows how each function splits its time among its callees."),
		mcp.WithString("mode",
			mcp.Required(),
			mcp.Description("benchmark or percentage"),
		),
	), v.selectMode)

	s.AddTool(mcp.NewTool("select_function",
		mcp.WithDescription("Restrict the percentage view to one function of the selected session. An empty name shows all functions."),
		mcp.WithString("name",
			mcp.Description("Function name"),
		),
	), v.selectFunction)

	s.AddTool(mcp.NewTool("render",
		mcp.WithDescription("Draw the current view to an image file and describe it."),
		mcp.WithString("path",
			mcp.Description("Image file to write (.png, .svg or .pdf); defaults to the server's -out file"),
		),
	), v.render)

	return s
}

func (v *viewer) listSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := v.ctrl.State()
	var sb strings.Builder
	for _, name := range v.ctrl.Registry().Names() {
		mark := " "
		if name == state.Session {
			mark = "*"
		}
		fmt.Fprintf(&sb, "%s %s\n", mark, name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (v *viewer) selectSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return v.apply(func(c *profview.Controller) error { return c.SelectSession(name) })
}

func (v *viewer) selectMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s, err := request.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode, err := profview.ParseMode(s)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return v.apply(func(c *profview.Controller) error { return c.SelectMode(mode) })
}

func (v *viewer) selectFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	return v.apply(func(c *profview.Controller) error { return c.SelectFunction(name) })
}

// apply runs one transition and describes the resulting view.
func (v *viewer) apply(transition func(*profview.Controller) error) (*mcp.CallToolResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := transition(v.ctrl); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(v.describe()), nil
}

func (v *viewer) render(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", v.out)
	format, err := profchart.ParseFormat(filepath.Ext(path))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rend, err := profchart.NewRenderer(format, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v.mu.Lock()
	err = v.frame.Replay(rend)
	desc := v.describe()
	v.mu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, err = rend.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("writing %s: %v", path, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %s\n\n%s", path, desc)), nil
}

// describe summarizes the current view. v.mu must be held.
func (v *viewer) describe() string {
	state := v.ctrl.State()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Session: %s\nView: %s\n", state.Session, state.Mode.Title())
	if state.Function != "" {
		fmt.Fprintf(&sb, "Function: %s\n", state.Function)
	}
	sb.WriteString("\n")
	switch f := v.frame; {
	case f.Bars != nil:
		if len(f.Bars.Values) == 0 {
			sb.WriteString("No functions to compare.\n")
		}
		scale := timescale.CommonScale(f.Bars.Values)
		for i, name := range f.Bars.Categories {
			fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, name, scale.Format(f.Bars.Values[i]))
		}
	case f.Grid != nil:
		for _, p := range f.Grid.Panels {
			fmt.Fprintf(&sb, "%s:", p.Title)
			for i, label := range p.Labels {
				fmt.Fprintf(&sb, " %s %3.1f%%", label, p.Sizes[i])
			}
			sb.WriteString("\n")
		}
	default:
		sb.WriteString("Nothing to draw.\n")
	}
	return sb.String()
}
