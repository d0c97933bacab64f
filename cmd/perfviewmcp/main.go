// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Perfviewmcp serves the profiling session viewer to MCP clients over
// stdio.
//
// Usage:
//
//	perfviewmcp [-dir directory] [-ext extensions] [-out file]
//
// It loads the sessions in -dir (default $CHESS_PROFILING_SESSIONS)
// and offers tools to list them, select a session, a view mode and a
// function, and render the current view to an image file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"golang.org/x/perfview/proffmt"
)

var (
	flagDir = flag.String("dir", os.Getenv("CHESS_PROFILING_SESSIONS"), "load session files from `directory` (default $CHESS_PROFILING_SESSIONS)")
	flagExt = flag.String("ext", strings.Join(proffmt.DefaultExtensions, ","), "comma-separated session file `extensions`")
	flagOut = flag.String("out", filepath.Join(os.TempDir(), "perfview.png"), "default image `file` for the render tool")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: perfviewmcp [flags]\n")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("perfviewmcp: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() > 0 || *flagDir == "" {
		flag.Usage()
	}

	reg, err := proffmt.LoadDir(*flagDir, proffmt.ParseExtensions(*flagExt)...)
	if err != nil {
		log.Fatal(err)
	}
	v, err := newViewer(reg, *flagOut)
	if err != nil {
		log.Fatal(err)
	}
	if err := server.ServeStdio(v.server()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
