// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fs provides read-only access to stores of session files.
package fs

import (
	"context"
	"io"
	iofs "io/fs"
	"os"
	"sort"

	"golang.org/x/perfview/proffmt"
	"golang.org/x/perfview/profstat"
)

// An FS is a flat, read-only store of session files.
type FS interface {
	// List returns the names of the files in the store in lexical
	// order.
	List(ctx context.Context) ([]string, error)

	// Open opens the named file for reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// IOFS adapts the top directory of an io/fs.FS to FS.
type IOFS struct {
	FS iofs.FS
}

// Dir returns an FS for the session files in the directory dir.
func Dir(dir string) IOFS {
	return IOFS{os.DirFS(dir)}
}

// List implements FS.List. Subdirectories are not listed.
func (f IOFS) List(ctx context.Context) ([]string, error) {
	entries, err := iofs.ReadDir(f.FS, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Open implements FS.Open.
func (f IOFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f.FS.Open(name)
}

// LoadRegistry loads every session file in fsys whose name ends in
// one of exts (proffmt.DefaultExtensions if exts is empty), in lexical
// order. It fails on the first file that cannot be read.
func LoadRegistry(ctx context.Context, fsys FS, exts ...string) (*profstat.Registry, error) {
	if len(exts) == 0 {
		exts = proffmt.DefaultExtensions
	}
	names, err := fsys.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	var sessions []*profstat.Session
	for _, file := range names {
		name, ok := proffmt.SessionName(file, exts)
		if !ok {
			continue
		}
		funcs, err := readSession(ctx, fsys, file)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, profstat.NewSession(name, funcs))
	}
	return profstat.NewRegistry(sessions...)
}

func readSession(ctx context.Context, fsys FS, file string) ([]*profstat.FunctionStat, error) {
	rc, err := fsys.Open(ctx, file)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return proffmt.ReadSession(rc, file)
}
