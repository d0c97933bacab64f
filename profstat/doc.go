// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profstat is the in-memory model of function profiling
// sessions.
//
// A profiling session is one run of an instrumented program. For each
// instrumented function the session records the function name, the
// average time spent in one call in nanoseconds, and optionally a
// breakdown of that time across the function's callees. A Breakdown is
// always closed: it carries a synthetic "other" slice holding whatever
// percentage the named callees do not account for, so its slices sum to
// 100.
//
// All values in this package are immutable once constructed. Sessions
// are grouped into a Registry keyed by session name, which preserves
// the order in which sessions were discovered.
package profstat
