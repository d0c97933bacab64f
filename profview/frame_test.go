// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFrameReplay(t *testing.T) {
	var f Frame
	if !f.Empty() {
		t.Errorf("zero Frame is not empty")
	}
	c, err := NewController(mustRegistry(t), &f)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SelectMode(PercentageView); err != nil {
		t.Fatal(err)
	}
	if f.Grid == nil || f.Bars != nil {
		t.Fatalf("Frame = %+v, want only a grid", f)
	}

	rec := new(recorder)
	if err := f.Replay(rec); err != nil {
		t.Fatal(err)
	}
	if rec.grid == nil {
		t.Fatalf("Replay drew %+v, want the grid", rec)
	}
	if diff := cmp.Diff(*f.Grid, *rec.grid); diff != "" {
		t.Errorf("replayed grid differs (-frame +replayed):\n%s", diff)
	}

	if err := c.SelectFunction("b"); err != nil {
		t.Fatal(err)
	}
	if !f.Empty() {
		t.Errorf("Frame = %+v after a clear, want empty", f)
	}
	if err := f.Replay(rec); err != nil || !rec.cleared {
		t.Errorf("Replay of an empty Frame drew %+v, %v; want Clear", rec, err)
	}

	if err := c.SelectMode(BenchmarkView); err != nil {
		t.Fatal(err)
	}
	if err := f.Replay(rec); err != nil || rec.bars == nil || rec.bars.Session != "s1" {
		t.Errorf("Replay of bars drew %+v, %v", rec, err)
	}
}
