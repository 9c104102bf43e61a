// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package valuetree

import (
	"github.com/tidwall/gjson"
)

// State holds path-scoped expansion flags.
type State struct {
	// DefaultCollapsedDepth is the depth from which containers start
	// collapsed. 0 collapses everything, including the root.
	DefaultCollapsedDepth int

	flags map[string]bool
}

// NewState returns an empty State with the given collapse depth.
func NewState(defaultCollapsedDepth int) *State {
	return &State{
		DefaultCollapsedDepth: defaultCollapsedDepth,
		flags:                 map[string]bool{},
	}
}

// Expanded reports whether the container at path is expanded. The first call
// for a path records the policy default; later calls return the recorded flag
// whatever depth they pass.
func (s *State) Expanded(path string, depth int) bool {
	if s.flags == nil {
		s.flags = map[string]bool{}
	}
	if v, ok := s.flags[path]; ok {
		return v
	}
	v := depth < s.DefaultCollapsedDepth
	s.flags[path] = v
	return v
}

// Known reports whether a flag exists for path.
func (s *State) Known(path string) bool {
	_, ok := s.flags[path]
	return ok
}

// Toggle flips the flag at path and returns the new value.
func (s *State) Toggle(path string, depth int) bool {
	v := !s.Expanded(path, depth)
	s.flags[path] = v
	return v
}

// Set records an explicit flag for path.
func (s *State) Set(path string, expanded bool) {
	if s.flags == nil {
		s.flags = map[string]bool{}
	}
	s.flags[path] = expanded
}

// ExpandAll expands every container of v.
func (s *State) ExpandAll(v gjson.Result) {
	s.setAll(v, RootPath, true)
}

// CollapseAll collapses every container of v, the root included.
func (s *State) CollapseAll(v gjson.Result) {
	s.setAll(v, RootPath, false)
}

// Reset forgets every flag so the policy applies again.
func (s *State) Reset() {
	clear(s.flags)
}

// Len returns the number of recorded flags.
func (s *State) Len() int {
	return len(s.flags)
}

func (s *State) setAll(v gjson.Result, root string, expanded bool) {
	var walk func(v gjson.Result, path string)
	walk = func(v gjson.Result, path string) {
		if !v.IsObject() && !v.IsArray() {
			return
		}
		s.Set(path, expanded)
		eachChild(v, path, func(c child) {
			walk(c.value, c.path)
		})
	}
	walk(Unwrap(v), root)
}
