// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profstat

import "time"

// A FunctionStat is the profile of one function in one session.
type FunctionStat struct {
	name      string
	averageNS int64
	timesRun  int64
	breakdown *Breakdown
}

// NewFunctionStat returns the profile of function name, which ran
// timesRun times taking averageNS nanoseconds per call on average.
// breakdown may be nil. timesRun is 0 if the profiler did not record
// it.
func NewFunctionStat(name string, averageNS, timesRun int64, breakdown *Breakdown) *FunctionStat {
	return &FunctionStat{name, averageNS, timesRun, breakdown}
}

// Name returns the function name.
func (f *FunctionStat) Name() string { return f.name }

// Average returns the average time of one call in nanoseconds.
func (f *FunctionStat) Average() int64 { return f.averageNS }

// Duration returns Average as a time.Duration.
func (f *FunctionStat) Duration() time.Duration { return time.Duration(f.averageNS) }

// TimesRun returns the number of recorded calls, or 0 if unknown.
func (f *FunctionStat) TimesRun() int64 { return f.timesRun }

// Breakdown returns the callee breakdown of f, or nil if f has no
// callee data.
func (f *FunctionStat) Breakdown() *Breakdown { return f.breakdown }
