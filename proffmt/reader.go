// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proffmt reads and writes profiling session files.
//
// A session file is a JSON array with one record per profiled
// function:
//
//	[
//	  {
//	    "name": "search",
//	    "times_run": 12,
//	    "average_ns": 48211,
//	    "child_percentages": {"evaluate": 61.5, "generateMoves": 20.25}
//	  },
//	  ...
//	]
//
// "name" and "average_ns" are required. "average_ns" may be a JSON
// number or a string holding an integer. "times_run" is optional.
// "child_percentages" may be absent, null or empty, in which case the
// function has no breakdown; otherwise its keys are read in document
// order.
package proffmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/perfview/profstat"
)

// A Reader reads the records of one session file.
//
// Its API is modeled on bufio.Scanner. To construct a new Reader,
// either call NewReader, or call Reset on a zeroed Reader.
type Reader struct {
	dec      *json.Decoder
	fileName string
	err      error

	started bool
	index   int // index of the record returned by Result
	result  *profstat.FunctionStat
}

// A MalformedRecordError reports a session file whose content does not
// have the expected shape.
type MalformedRecordError struct {
	FileName string
	// Record is the 0-based index of the offending record, or -1 if
	// the problem is not specific to one record.
	Record int
	// Field is the name of the offending field, if any.
	Field string
	Msg   string
}

func (e *MalformedRecordError) Error() string {
	switch {
	case e.Record < 0:
		return fmt.Sprintf("%s: %s", e.FileName, e.Msg)
	case e.Field == "":
		return fmt.Sprintf("%s: record %d: %s", e.FileName, e.Record, e.Msg)
	}
	return fmt.Sprintf("%s: record %d: %s: %s", e.FileName, e.Record, e.Field, e.Msg)
}

// NewReader constructs a reader to parse session records from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input.
func (r *Reader) Reset(ior io.Reader, fileName string) {
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.dec = json.NewDecoder(ior)
	r.dec.UseNumber()
	r.fileName = fileName
	r.err = nil
	r.started = false
	r.index = -1
	r.result = nil
}

func (r *Reader) malformed(field, format string, args ...interface{}) *MalformedRecordError {
	return &MalformedRecordError{r.fileName, r.index, field, fmt.Sprintf(format, args...)}
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get the
// record. If Scan reaches the end of the array, or if an error occurs,
// it returns false, in which case the caller should use the Err method
// to check for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	if !r.started {
		r.started = true
		tok, err := r.dec.Token()
		if err != nil {
			if err == io.EOF {
				r.err = r.malformed("", "empty session file")
			} else {
				r.err = r.decodeError(err)
			}
			return false
		}
		if d, ok := tok.(json.Delim); !ok || d != '[' {
			r.err = r.malformed("", "session file must hold a JSON array of records")
			return false
		}
	}

	if !r.dec.More() {
		r.result = nil
		r.index = -1
		// Consume the closing bracket and make sure nothing follows.
		if _, err := r.dec.Token(); err != nil {
			r.err = r.decodeError(err)
			return false
		}
		if _, err := r.dec.Token(); err != io.EOF {
			if err != nil {
				r.err = r.decodeError(err)
			} else {
				r.err = r.malformed("", "unexpected data after record array")
			}
		}
		return false
	}

	r.index++
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		r.err = r.decodeError(err)
		return false
	}
	stat, err := r.parseRecord(raw)
	if err != nil {
		r.err = err
		return false
	}
	r.result = stat
	return true
}

// decodeError classifies an error from the JSON decoder. Syntax errors
// are malformed content; anything else is an I/O error from the
// underlying reader.
func (r *Reader) decodeError(err error) error {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) || err == io.ErrUnexpectedEOF || err == io.EOF {
		return r.malformed("", "%v", err)
	}
	return fmt.Errorf("%s: %w", r.fileName, err)
}

// Result returns the record that was just read by Scan.
func (r *Reader) Result() *profstat.FunctionStat {
	return r.result
}

// Err returns the first error encountered by Scan, or nil if Scan
// stopped at the end of the record array.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) parseRecord(raw json.RawMessage) (*profstat.FunctionStat, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, r.malformed("", "record is not an object")
	}

	nameRaw, ok := fields["name"]
	if !ok || isNull(nameRaw) {
		return nil, r.malformed("name", "missing")
	}
	var name string
	if err := json.Unmarshal(nameRaw, &name); err != nil {
		return nil, r.malformed("name", "not a string")
	}

	avgRaw, ok := fields["average_ns"]
	if !ok || isNull(avgRaw) {
		return nil, r.malformed("average_ns", "missing")
	}
	avg, err := parseInt(avgRaw)
	if err != nil {
		return nil, r.malformed("average_ns", "%v", err)
	}
	if avg < 0 {
		return nil, r.malformed("average_ns", "negative duration %d", avg)
	}

	var timesRun int64
	if raw, ok := fields["times_run"]; ok && !isNull(raw) {
		timesRun, err = parseInt(raw)
		if err != nil {
			return nil, r.malformed("times_run", "%v", err)
		}
		if timesRun < 0 {
			return nil, r.malformed("times_run", "negative count %d", timesRun)
		}
	}

	var breakdown *profstat.Breakdown
	if raw, ok := fields["child_percentages"]; ok && !isNull(raw) {
		breakdown, err = r.parseBreakdown(raw)
		if err != nil {
			return nil, err
		}
	}

	return profstat.NewFunctionStat(name, avg, timesRun, breakdown), nil
}

func (r *Reader) parseBreakdown(raw json.RawMessage) (*profstat.Breakdown, error) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, r.malformed("child_percentages", "not an object")
	}
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(raw, om); err != nil {
		return nil, r.malformed("child_percentages", "%v", err)
	}
	callees := make([]profstat.Slice, 0, om.Len())
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		field := "child_percentages." + pair.Key
		if isNull(pair.Value) {
			return nil, r.malformed(field, "missing percentage")
		}
		v, err := decodeScalar(pair.Value)
		if err != nil {
			return nil, r.malformed(field, "%v", err)
		}
		pct, err := cast.ToFloat64E(scalarString(v))
		if err != nil {
			return nil, r.malformed(field, "invalid percentage: %v", err)
		}
		if pct < 0 {
			return nil, r.malformed(field, "negative percentage %v", pct)
		}
		callees = append(callees, profstat.Slice{Label: pair.Key, Percentage: pct})
	}
	return profstat.NewBreakdown(callees), nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeScalar decodes a JSON number, string or boolean. Numbers are
// returned as json.Number so integers keep full precision.
func decodeScalar(raw json.RawMessage) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case json.Number, string, bool:
		return v, nil
	}
	return nil, fmt.Errorf("not a number: %s", raw)
}

// scalarString unwraps a json.Number so that cast parses its exact
// text.
func scalarString(v interface{}) interface{} {
	if num, ok := v.(json.Number); ok {
		return string(num)
	}
	return v
}

// parseInt converts a JSON number or numeric string to an integer.
// Strings are always decimal, so leading zeros do not select another
// base. Non integral JSON numbers are truncated toward zero.
func parseInt(raw json.RawMessage) (int64, error) {
	v, err := decodeScalar(raw)
	if err != nil {
		return 0, err
	}
	if str, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %s", raw)
		}
		return n, nil
	}
	n, err := cast.ToInt64E(scalarString(v))
	if err == nil {
		return n, nil
	}
	if num, ok := v.(json.Number); ok {
		if f, ferr := num.Float64(); ferr == nil && f > math.MinInt64 && f < math.MaxInt64 {
			return int64(f), nil
		}
	}
	return 0, fmt.Errorf("invalid integer %s", raw)
}
