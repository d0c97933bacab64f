// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profstat

import "sort"

// RankForBarGraph returns the functions to compare in a bar graph,
// largest average first.
//
// The sort is stable, so functions with equal averages keep their
// recorded order. The first entry after sorting is dropped: the
// function with the largest average is the root timer of the session
// (for example "total") and would dwarf every other bar. funcs is not
// modified.
func RankForBarGraph(funcs []*FunctionStat) []*FunctionStat {
	if len(funcs) == 0 {
		return nil
	}
	sorted := append([]*FunctionStat(nil), funcs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].averageNS > sorted[j].averageNS
	})
	return sorted[1:]
}

// WithBreakdown returns the functions of funcs that have a Breakdown,
// in order.
func WithBreakdown(funcs []*FunctionStat) []*FunctionStat {
	var out []*FunctionStat
	for _, f := range funcs {
		if f.breakdown != nil {
			out = append(out, f)
		}
	}
	return out
}
