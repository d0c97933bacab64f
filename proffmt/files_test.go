// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proffmt

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

func TestSessionName(t *testing.T) {
	for _, test := range []struct {
		file string
		want string
		ok   bool
	}{
		{"2024-03-01_12-00-00.json", "2024-03-01_12-00-00", true},
		{"dir/run.json", "run", true},
		{"run.json.zst", "run", true},
		{"run.json.sz", "run", true},
		{"run.txt", "", false},
		{".json", "", false},
		{"run.zst", "", false},
	} {
		got, ok := SessionName(test.file, DefaultExtensions)
		if got != test.want || ok != test.ok {
			t.Errorf("SessionName(%q) = %q, %v, want %q, %v", test.file, got, ok, test.want, test.ok)
		}
	}
}

func TestParseExtensions(t *testing.T) {
	for _, test := range []struct {
		list string
		want []string
	}{
		{"", nil},
		{".json", []string{".json"}},
		{".json, .json.zst", []string{".json", ".json.zst"}},
		{" .json ,, .json.sz,", []string{".json", ".json.sz"}},
	} {
		if got := ParseExtensions(test.list); !reflect.DeepEqual(got, test.want) {
			t.Errorf("ParseExtensions(%q) = %q, want %q", test.list, got, test.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	funcs, err := ReadFile("testdata/2024-03-01_12-00-00.json")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, f := range funcs {
		got = append(got, f.Name())
	}
	if want := []string{"total", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
	if funcs[2].Average() != 80 || funcs[2].Breakdown() != nil {
		t.Errorf("b = %d %v, want 80 with no breakdown", funcs[2].Average(), funcs[2].Breakdown())
	}
}

const session = `[{"name": "total", "average_ns": 10}, {"name": "f", "average_ns": 4}]`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0666); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), []byte(session))
	writeFile(t, filepath.Join(dir, "a.json"), []byte(session))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not a session"))
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0777); err != nil {
		t.Fatal(err)
	}

	var zbuf bytes.Buffer
	zw, err := zstd.NewWriter(&zbuf)
	if err != nil {
		t.Fatal(err)
	}
	zw.Write([]byte(session))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "c.json.zst"), zbuf.Bytes())

	var sbuf bytes.Buffer
	sw := snappy.NewBufferedWriter(&sbuf)
	sw.Write([]byte(session))
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "d.json.sz"), sbuf.Bytes())

	reg, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := reg.Names(), []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for _, name := range reg.Names() {
		s, _ := reg.Lookup(name)
		if s.Len() != 2 {
			t.Errorf("session %s has %d functions, want 2", name, s.Len())
		}
	}

	// Restricting the extensions skips the compressed files.
	reg, err = LoadDir(dir, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := reg.Names(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() with .json only = %v, want %v", got, want)
	}
}

func TestLoadDirFailFast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), []byte(session))
	writeFile(t, filepath.Join(dir, "b.json"), []byte(`[{"name": "f"}]`))
	writeFile(t, filepath.Join(dir, "c.json"), []byte(session))

	reg, err := LoadDir(dir)
	if reg != nil {
		t.Errorf("LoadDir returned a registry along with error %v", err)
	}
	var merr *MalformedRecordError
	if !errors.As(err, &merr) {
		t.Fatalf("want *MalformedRecordError, got %v", err)
	}
	if filepath.Base(merr.FileName) != "b.json" {
		t.Errorf("error names %s, want b.json", merr.FileName)
	}
}

func TestLoadDirDuplicateSession(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.json"), []byte(session))
	var sbuf bytes.Buffer
	sw := snappy.NewBufferedWriter(&sbuf)
	sw.Write([]byte(session))
	sw.Close()
	writeFile(t, filepath.Join(dir, "a.json.sz"), sbuf.Bytes())

	if _, err := LoadDir(dir); err == nil {
		t.Errorf("LoadDir with two files for session a succeeded")
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadDir(missing) = %v, want ErrNotExist", err)
	}
}
