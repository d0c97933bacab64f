// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proffmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/perfview/profstat"
)

// DefaultExtensions are the session file extensions recognized when
// the caller does not supply its own list.
var DefaultExtensions = []string{".json", ".json.zst", ".json.sz"}

// ParseExtensions parses a comma-separated list of extensions, as
// given on a command line. Blanks around entries are trimmed and empty
// entries are dropped.
func ParseExtensions(list string) []string {
	var exts []string
	for _, e := range strings.Split(list, ",") {
		if e = strings.TrimSpace(e); e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// SessionName returns the name of the session stored in the file
// named fileName, which is the base name with the longest matching
// extension in exts stripped. It reports false if fileName does not
// end in any of exts.
func SessionName(fileName string, exts []string) (string, bool) {
	base := filepath.Base(fileName)
	best := ""
	for _, ext := range exts {
		if len(ext) > len(best) && len(base) > len(ext) && strings.HasSuffix(base, ext) {
			best = ext
		}
	}
	if best == "" {
		return "", false
	}
	return strings.TrimSuffix(base, best), true
}

// ReadSession reads all records of one session file from r, in file
// order. fileName selects decompression (".zst" for zstd, ".sz" for
// snappy framed streams) and is used in error messages.
//
// Reading stops at the first malformed record; the error is then a
// *MalformedRecordError and no records are returned.
func ReadSession(r io.Reader, fileName string) ([]*profstat.FunctionStat, error) {
	switch {
	case strings.HasSuffix(fileName, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fileName, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(fileName, ".sz"):
		r = snappy.NewReader(r)
	}

	var funcs []*profstat.FunctionStat
	reader := NewReader(r, fileName)
	for reader.Scan() {
		funcs = append(funcs, reader.Result())
	}
	if err := reader.Err(); err != nil {
		return nil, err
	}
	return funcs, nil
}

// ReadFile reads the session file at path.
func ReadFile(path string) ([]*profstat.FunctionStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSession(f, path)
}

// LoadDir loads every session file in dir whose name ends in one of
// exts (DefaultExtensions if exts is empty). Sessions are added to the
// Registry in directory order. Subdirectories are ignored.
//
// LoadDir fails on the first file that cannot be read; it never
// returns a partially loaded Registry.
func LoadDir(dir string, exts ...string) (*profstat.Registry, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var sessions []*profstat.Session
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := SessionName(entry.Name(), exts)
		if !ok {
			continue
		}
		funcs, err := ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, profstat.NewSession(name, funcs))
	}
	return profstat.NewRegistry(sessions...)
}
