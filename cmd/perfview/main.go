// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Perfview shows the function timings recorded in profiling sessions.
//
// Usage:
//
//	perfview [flags]
//
// Perfview loads every session file in a directory (by default
// $CHESS_PROFILING_SESSIONS). A session file holds a JSON array of
// records like
//
//	{"name": "search", "times_run": 12, "average_ns": 48211,
//	 "child_percentages": {"evaluate": 61.5, "movegen": 20}}
//
// and the session is named after the file, minus its extension.
// Files ending in .json.zst or .json.sz are zstd or snappy compressed.
//
// Perfview selects a session (-session, default the last one) and a
// view (-mode). The benchmark view compares the average time of each
// function, leaving out the slowest, which is normally the root that
// covers all the others. The percentage view shows how each function
// that has callees splits its time between them. -function restricts
// the percentage view to one function.
//
// The view is printed as text, or drawn to the image file named by -o
// (PNG, SVG or PDF, chosen by -format or the file extension). With
// -http, perfview instead serves an interactive page on the given
// address.
//
// Sessions can also come from a Google Cloud Storage bucket (-gcs) or
// from a SQL database (-db driver:dsn, with driver sqlite3 or mysql).
// With -import, the sessions loaded from -dir or -gcs are stored into
// the -db database, replacing sessions of the same name.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"gonum.org/v1/plot/vg"

	"golang.org/x/perfview/app"
	"golang.org/x/perfview/profchart"
	"golang.org/x/perfview/proffmt"
	"golang.org/x/perfview/profstat"
	"golang.org/x/perfview/profview"
	"golang.org/x/perfview/storage/db"
	_ "golang.org/x/perfview/storage/db/sqlite3"
	"golang.org/x/perfview/storage/fs"
	"golang.org/x/perfview/storage/fs/gcs"
)

// sessionsEnv names the environment variable holding the default
// sessions directory.
const sessionsEnv = "CHESS_PROFILING_SESSIONS"

func main() {
	log.SetPrefix("perfview: ")
	log.SetFlags(0)
	if err := perfview(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

type config struct {
	dir, gcs, dsn string
	gcsAnon       bool
	exts          []string
	importDB      bool

	session, mode, function string

	out, format   string
	width, height vg.Length

	http string
}

func parseFlags(wErr io.Writer, args []string) (*config, error) {
	flags := flag.NewFlagSet("perfview", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: perfview [flags]\n")
		flags.PrintDefaults()
	}

	var c config
	flags.StringVar(&c.dir, "dir", os.Getenv(sessionsEnv), "load session files from `directory` (default $"+sessionsEnv+")")
	flags.StringVar(&c.gcs, "gcs", "", "load session files from `gs://bucket/prefix` instead of -dir")
	flags.BoolVar(&c.gcsAnon, "gcs-anon", false, "access -gcs without credentials")
	flags.StringVar(&c.dsn, "db", "", "load sessions from, or -import them into, the `driver:dsn` database")
	flags.BoolVar(&c.importDB, "import", false, "store the sessions from -dir or -gcs into -db")
	ext := flags.String("ext", strings.Join(proffmt.DefaultExtensions, ","), "comma-separated session file `extensions`")
	flags.StringVar(&c.session, "session", "", "show session `name` (default the last session)")
	flags.StringVar(&c.mode, "mode", "benchmark", "view `mode`: benchmark or percentage")
	flags.StringVar(&c.function, "function", "", "restrict the percentage view to function `name`")
	flags.StringVar(&c.out, "o", "", "draw the view to image `file` instead of printing it")
	flags.StringVar(&c.format, "format", "", "image `format` of -o: png, svg or pdf (default from the file extension)")
	width := flags.String("width", "", "image `width`, such as 25cm or 10in")
	height := flags.String("height", "", "image `height`, such as 15cm or 6in")
	flags.StringVar(&c.http, "http", "", "serve the viewer on `address` instead")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		flags.Usage()
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}
	c.exts = proffmt.ParseExtensions(*ext)
	var err error
	if *width != "" {
		if c.width, err = vg.ParseLength(*width); err != nil {
			return nil, fmt.Errorf("-width: %w", err)
		}
	}
	if *height != "" {
		if c.height, err = vg.ParseLength(*height); err != nil {
			return nil, fmt.Errorf("-height: %w", err)
		}
	}
	if c.importDB && c.dsn == "" {
		return nil, fmt.Errorf("-import requires -db")
	}
	if c.dir == "" && c.gcs == "" && (c.dsn == "" || c.importDB) {
		return nil, fmt.Errorf("no sessions: set -dir, -gcs, -db or $%s", sessionsEnv)
	}
	return &c, nil
}

func perfview(w, wErr io.Writer, args []string) error {
	c, err := parseFlags(wErr, args)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var store *db.DB
	if c.dsn != "" {
		driver, dsn, ok := strings.Cut(c.dsn, ":")
		if !ok {
			return fmt.Errorf("-db %q: want driver:dsn", c.dsn)
		}
		if store, err = db.OpenSQL(driver, dsn); err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()
	}

	load := func(ctx context.Context) (*profstat.Registry, error) {
		switch {
		case store != nil && !c.importDB:
			return store.LoadRegistry(ctx)
		case c.gcs != "":
			bucket, prefix, err := gcs.ParseURL(c.gcs)
			if err != nil {
				return nil, err
			}
			client, err := gcs.NewClient(ctx, c.gcsAnon)
			if err != nil {
				return nil, err
			}
			defer client.Close()
			return fs.LoadRegistry(ctx, gcs.NewBucket(client, bucket, prefix), c.exts...)
		}
		return proffmt.LoadDir(c.dir, c.exts...)
	}

	reg, err := load(ctx)
	if err != nil {
		return err
	}
	if c.importDB {
		for _, name := range reg.Names() {
			s, _ := reg.Lookup(name)
			if err := store.InsertSession(ctx, s); err != nil {
				return fmt.Errorf("import %s: %w", name, err)
			}
		}
		fmt.Fprintf(wErr, "imported %d sessions\n", reg.Len())
	}

	if c.http != "" {
		return serve(c, reg, load)
	}
	return show(w, c, reg)
}

// show prints or draws the selected view.
func show(w io.Writer, c *config, reg *profstat.Registry) error {
	mode, err := profview.ParseMode(c.mode)
	if err != nil {
		return err
	}

	var sink profview.Sink
	var rend *profchart.Renderer
	text := &textSink{}
	if c.out != "" {
		format := profchart.Format(c.format)
		if format == "" {
			format = profchart.Format(filepath.Ext(c.out))
		}
		if format, err = profchart.ParseFormat(string(format)); err != nil {
			return err
		}
		if rend, err = profchart.NewRenderer(format, c.width, c.height); err != nil {
			return err
		}
		sink = rend
	} else {
		sink = text
	}

	// Each selection redraws; the sink keeps only the last view.
	ctrl, err := profview.NewController(reg, sink)
	if err != nil {
		return err
	}
	if c.session != "" {
		if err := ctrl.SelectSession(c.session); err != nil {
			return err
		}
	}
	if err := ctrl.SelectMode(mode); err != nil {
		return err
	}
	if c.function != "" {
		if err := ctrl.SelectFunction(c.function); err != nil {
			return err
		}
	}

	if rend == nil {
		return text.print(w, reg, ctrl.State())
	}
	f, err := os.Create(c.out)
	if err != nil {
		return err
	}
	if _, err := rend.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// serve runs the HTTP viewer until the server fails.
func serve(c *config, reg *profstat.Registry, load func(context.Context) (*profstat.Registry, error)) error {
	a, err := app.New(reg)
	if err != nil {
		return err
	}
	if c.width > 0 {
		a.Width = c.width
	}
	if c.height > 0 {
		a.Height = c.height
	}
	a.Reload = load
	mux := http.NewServeMux()
	a.RegisterOnMux(mux)

	log.Printf("Listening on %s", c.http)
	return http.ListenAndServe(c.http, mux)
}
