// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profstat

import "fmt"

// A Session is the ordered list of function profiles recorded by one
// profiling run.
type Session struct {
	name  string
	funcs []*FunctionStat
}

// NewSession returns a Session named name holding funcs in order.
// Function names are not required to be unique.
func NewSession(name string, funcs []*FunctionStat) *Session {
	return &Session{name, append([]*FunctionStat(nil), funcs...)}
}

// Name returns the session name.
func (s *Session) Name() string { return s.name }

// Len returns the number of functions in s.
func (s *Session) Len() int { return len(s.funcs) }

// Functions returns a copy of the function list of s, in recorded
// order.
func (s *Session) Functions() []*FunctionStat {
	return append([]*FunctionStat(nil), s.funcs...)
}

// Lookup returns the first function in s named name.
func (s *Session) Lookup(name string) (*FunctionStat, bool) {
	for _, f := range s.funcs {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// A Registry maps session names to sessions. It remembers the order in
// which sessions were added, but callers should not assign any meaning
// to that order beyond determinism.
type Registry struct {
	names    []string
	sessions map[string]*Session
}

// NewRegistry returns a Registry holding sessions in the given order.
// It is an error for two sessions to share a name.
func NewRegistry(sessions ...*Session) (*Registry, error) {
	r := &Registry{sessions: make(map[string]*Session, len(sessions))}
	for _, s := range sessions {
		if _, ok := r.sessions[s.name]; ok {
			return nil, fmt.Errorf("duplicate session %q", s.name)
		}
		r.names = append(r.names, s.name)
		r.sessions[s.name] = s
	}
	return r, nil
}

// Len returns the number of sessions in r.
func (r *Registry) Len() int { return len(r.names) }

// Names returns the session names in the order they were added.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns the session named name.
func (r *Registry) Lookup(name string) (*Session, bool) {
	s, ok := r.sessions[name]
	return s, ok
}

// Default returns the name of the session to show when nothing has
// been selected yet: the last session added. It returns "" if r is
// empty.
func (r *Registry) Default() string {
	if len(r.names) == 0 {
		return ""
	}
	return r.names[len(r.names)-1]
}
