// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profview

import (
	"fmt"
	"strings"
)

// A Mode selects which chart the Controller renders.
type Mode int

const (
	// BenchmarkView compares function averages within a session
	// as a bar chart.
	BenchmarkView Mode = iota
	// PercentageView shows one callee breakdown pie per function.
	PercentageView
)

// Modes lists every Mode in menu order.
var Modes = []Mode{BenchmarkView, PercentageView}

func (m Mode) valid() bool {
	return m == BenchmarkView || m == PercentageView
}

// String returns the short name of m, as accepted by ParseMode.
func (m Mode) String() string {
	switch m {
	case BenchmarkView:
		return "benchmark"
	case PercentageView:
		return "percentage"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Title returns the menu label of m.
func (m Mode) Title() string {
	switch m {
	case BenchmarkView:
		return "Individual Benchmarks"
	case PercentageView:
		return "Function Percentages"
	}
	return m.String()
}

// ParseMode parses a mode name. It accepts the String and Title forms
// of each Mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, m.String()) || strings.EqualFold(s, m.Title()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown view mode %q (want benchmark or percentage)", s)
}
