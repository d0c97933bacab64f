// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/perfview/internal/diff"
	"golang.org/x/perfview/proffmt"
	"golang.org/x/perfview/profview"
)

const sessions = "testdata/sessions"

func TestText(t *testing.T) {
	golden(t, "default", "-dir", sessions)
	golden(t, "s1", "-dir", sessions, "-session", "2024-03-01_12-00-00")
	golden(t, "percentage", "-dir", sessions, "-mode", "percentage")
	golden(t, "function", "-dir", sessions, "-mode", "Function Percentages", "-function", "c")
	golden(t, "nothing", "-dir", sessions, "-mode", "percentage", "-function", "d")
	golden(t, "zero", "-dir", "testdata/zero")
	golden(t, "default", "-dir", sessions, "-ext", " .json, .json.zst,")
}

func TestSessionsEnv(t *testing.T) {
	t.Setenv(sessionsEnv, sessions)
	golden(t, "default")
}

func TestDatabase(t *testing.T) {
	dsn := "sqlite3:" + filepath.Join(t.TempDir(), "sessions.db")

	var stdout, stderr bytes.Buffer
	if err := perfview(&stdout, &stderr, []string{"-dir", sessions, "-db", dsn, "-import"}); err != nil {
		t.Fatalf("-import: %v", err)
	}
	if got := stderr.String(); got != "imported 2 sessions\n" {
		t.Errorf("-import stderr = %q", got)
	}

	// Reading back from the database gives the same views.
	golden(t, "default", "-db", dsn)
	golden(t, "percentage", "-db", dsn, "-mode", "percentage")
}

func TestImage(t *testing.T) {
	dir := t.TempDir()
	for _, test := range []struct {
		args  []string
		file  string
		magic string
	}{
		{[]string{"-mode", "percentage"}, "out.png", "\x89PNG"},
		{nil, "out.svg", "<svg"},
		{[]string{"-format", "pdf", "-width", "20cm", "-height", "12cm"}, "out.chart", "%PDF"},
	} {
		out := filepath.Join(dir, test.file)
		var stdout, stderr bytes.Buffer
		args := append([]string{"-dir", sessions, "-o", out}, test.args...)
		if err := perfview(&stdout, &stderr, args); err != nil {
			t.Errorf("%s: %v", test.file, err)
			continue
		}
		if stdout.Len() != 0 {
			t.Errorf("%s: image output also printed %q", test.file, stdout.String())
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte(test.magic)) {
			t.Errorf("%s starts with %.10q, want a %q file", test.file, data, test.magic)
		}
	}
}

func TestErrors(t *testing.T) {
	bad := t.TempDir()
	if err := os.WriteFile(filepath.Join(bad, "s.json"), []byte(`[{"name": "f", "average_ns": -1}]`), 0666); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) error {
		t.Helper()
		var stdout, stderr bytes.Buffer
		return perfview(&stdout, &stderr, args)
	}

	var uerr *profview.UnknownSessionError
	if err := run("-dir", sessions, "-session", "nope"); !errors.As(err, &uerr) {
		t.Errorf("unknown session: %v, want *UnknownSessionError", err)
	}
	var ferr *profview.UnknownFunctionError
	if err := run("-dir", sessions, "-function", "nope"); !errors.As(err, &ferr) {
		t.Errorf("unknown function: %v, want *UnknownFunctionError", err)
	}
	var merr *proffmt.MalformedRecordError
	if err := run("-dir", bad); !errors.As(err, &merr) {
		t.Errorf("malformed session: %v, want *MalformedRecordError", err)
	}
	if err := run("-dir", t.TempDir()); !errors.Is(err, profview.ErrNoSessions) {
		t.Errorf("empty directory: %v, want ErrNoSessions", err)
	}

	t.Setenv(sessionsEnv, "")
	for _, args := range [][]string{
		{},
		{"-dir", sessions, "-mode", "pie"},
		{"-dir", sessions, "-import"},
		{"-dir", sessions, "-o", "out.gif"},
		{"-dir", sessions, "-db", "nodriver"},
		{"-dir", sessions, "-width", "wide"},
		{"-dir", sessions, "extra"},
	} {
		if err := run(args...); err == nil {
			t.Errorf("perfview %s succeeded", strings.Join(args, " "))
		}
	}
}

func golden(t *testing.T, name string, args ...string) {
	t.Helper()
	var got, gotErr bytes.Buffer
	t.Logf("perfview %s", strings.Join(args, " "))
	if err := perfview(&got, &gotErr, args); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want, err := os.ReadFile(filepath.Join("testdata", name+".stdout"))
	if err != nil {
		t.Fatal(err)
	}
	if d := diff.Diff(string(want), got.String()); d != "" {
		t.Errorf("perfview %s: wrong output (- want, + got):\n%s", strings.Join(args, " "), d)
	}
}
