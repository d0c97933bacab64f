// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package proffmt

import (
	"encoding/json"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/perfview/profstat"
)

// A Writer writes session files in the format read by Reader.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w}
}

type record struct {
	Name             string                                  `json:"name"`
	TimesRun         int64                                   `json:"times_run"`
	AverageNS        int64                                   `json:"average_ns"`
	ChildPercentages *orderedmap.OrderedMap[string, float64] `json:"child_percentages"`
}

// Write writes funcs as one session file. Breakdowns are written
// without their "other" slice, which readers recompute.
func (w *Writer) Write(funcs []*profstat.FunctionStat) error {
	records := make([]record, 0, len(funcs))
	for _, f := range funcs {
		rec := record{Name: f.Name(), TimesRun: f.TimesRun(), AverageNS: f.Average()}
		if b := f.Breakdown(); b != nil {
			rec.ChildPercentages = orderedmap.New[string, float64]()
			for _, s := range b.Callees() {
				rec.ChildPercentages.Set(s.Label, s.Percentage)
			}
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
