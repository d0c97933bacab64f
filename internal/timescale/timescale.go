// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timescale formats nanosecond averages with a time unit
// chosen to show at least three significant digits.
package timescale

import (
	"fmt"
	"math"
	"strconv"
)

// A Scaler represents a time unit and the precision to print values
// in it.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Nanoseconds in one Unit
	Unit   string  // "s", "ms", "µs" or "ns"
}

// Format formats ns, a number of nanoseconds, in the unit of s.
// For example, Scaler{3, 1e6, "ms"}.Format(1234567) returns "1.235ms".
func (s Scaler) Format(ns float64) string {
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, ns/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Unit...)
	return string(buf)
}

type factor struct {
	factor float64
	unit   string
	// Thresholds for 100.0, 10.00, 1.000.
	t100, t10, t1 float64
}

// nsScaler prints whole nanoseconds; averages are recorded as integers.
var nsScaler = Scaler{0, 1, "ns"}

var factors = mkFactors()

func mkFactors() []factor {
	// The thresholds are parsed from their printed form so that they
	// round exactly the way Format does.
	var factors []factor
	exp := 9
	for _, u := range []string{"s", "ms", "µs"} {
		t100, _ := strconv.ParseFloat(fmt.Sprintf("99.995e%d", exp), 64)
		t10, _ := strconv.ParseFloat(fmt.Sprintf("9.9995e%d", exp), 64)
		t1, _ := strconv.ParseFloat(fmt.Sprintf(".99995e%d", exp), 64)
		factors = append(factors, factor{math.Pow(10, float64(exp)), u, t100, t10, t1})
		exp -= 3
	}
	return factors
}

// Scale formats ns using at least three significant digits.
func Scale(ns float64) string {
	return CommonScale([]float64{ns}).Format(ns)
}

// CommonScale returns a common Scaler to apply to all values in vals.
// The scale is chosen by the non-zero value closest to zero, so every
// value shows at least three significant digits.
func CommonScale(vals []float64) Scaler {
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && (min == 0 || v < min) {
			min = v
		}
	}
	for _, f := range factors {
		switch {
		case min >= f.t100:
			return Scaler{1, f.factor, f.unit}
		case min >= f.t10:
			return Scaler{2, f.factor, f.unit}
		case min >= f.t1:
			return Scaler{3, f.factor, f.unit}
		}
	}
	return nsScaler
}
