// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import "sync/atomic"

// Sequencer numbers requests so a view can drop responses that arrive after
// a newer request was issued. The zero value is ready to use.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues the next sequence number.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// IsLatest reports whether seq is the most recently issued number.
func (s *Sequencer) IsLatest(seq uint64) bool {
	return seq != 0 && s.last.Load() == seq
}
