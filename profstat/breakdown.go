// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profstat

// OtherLabel is the label of the synthetic slice that closes a
// Breakdown.
const OtherLabel = "other"

// A Slice is the share of a function's time attributed to one callee.
type Slice struct {
	Label      string
	Percentage float64
}

// A Breakdown is the attribution of a function's time to its callees.
//
// The last slice is always labeled OtherLabel and holds 100 minus the
// sum of the callee percentages, so the slices of a Breakdown sum to
// 100. If the callee percentages sum to more than 100, the "other"
// slice is negative; this is kept as is rather than rejected.
type Breakdown struct {
	slices []Slice
}

// NewBreakdown returns the Breakdown of the given callee slices,
// closed with an "other" slice. The callee order is preserved.
//
// If callees is empty, NewBreakdown returns nil: a function without
// callee data has no Breakdown, not an empty one.
func NewBreakdown(callees []Slice) *Breakdown {
	if len(callees) == 0 {
		return nil
	}
	slices := make([]Slice, 0, len(callees)+1)
	var sum float64
	for _, s := range callees {
		slices = append(slices, s)
		sum += s.Percentage
	}
	slices = append(slices, Slice{OtherLabel, 100.0 - sum})
	return &Breakdown{slices}
}

// Len returns the number of slices in b, including "other".
func (b *Breakdown) Len() int {
	return len(b.slices)
}

// At returns the i'th slice of b.
func (b *Breakdown) At(i int) Slice {
	return b.slices[i]
}

// Slices returns a copy of the slices of b.
func (b *Breakdown) Slices() []Slice {
	return append([]Slice(nil), b.slices...)
}

// Callees returns a copy of the slices of b without the closing
// "other" slice. NewBreakdown(b.Callees()) is equivalent to b.
func (b *Breakdown) Callees() []Slice {
	return append([]Slice(nil), b.slices[:len(b.slices)-1]...)
}

// Labels returns the labels of b's slices in order.
func (b *Breakdown) Labels() []string {
	labels := make([]string, len(b.slices))
	for i, s := range b.slices {
		labels[i] = s.Label
	}
	return labels
}

// Percentages returns the percentages of b's slices in order.
func (b *Breakdown) Percentages() []float64 {
	pcts := make([]float64, len(b.slices))
	for i, s := range b.slices {
		pcts[i] = s.Percentage
	}
	return pcts
}
