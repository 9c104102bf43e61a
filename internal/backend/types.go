// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"encoding/json"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// Run statuses reported by the backend.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// KindNode marks spans recorded around a graph node. Their interesting
// payloads are the state before and after the node ran.
const KindNode = "node"

// Run is one end-to-end execution.
type Run struct {
	ID             string          `json:"id" yaml:"id"`
	ThreadID       string          `json:"thread_id" yaml:"thread_id"`
	Status         string          `json:"status" yaml:"status"`
	GraphSignature *string         `json:"graph_signature,omitempty" yaml:"graph_signature,omitempty"`
	Policy         *string         `json:"policy,omitempty" yaml:"policy,omitempty"`
	MetaData       json.RawMessage `json:"meta_data,omitempty" yaml:"-"`
}

// Final reports whether the run can no longer record spans.
func (r Run) Final() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// Span is one recorded unit of work within a run. Spans listed as unmatched
// in a diff carry only the identifying fields.
type Span struct {
	ID           string          `json:"id"`
	RunID        string          `json:"run_id,omitempty"`
	NodeID       *string         `json:"node_id,omitempty"`
	CheckpointID *string         `json:"checkpoint_id,omitempty"`
	Kind         string          `json:"kind"`
	Name         string          `json:"name"`
	StartTS      *float64        `json:"start_ts,omitempty"`
	EndTS        *float64        `json:"end_ts,omitempty"`
	Fingerprint  string          `json:"fingerprint"`
	Attrs        json.RawMessage `json:"attrs,omitempty"`
}

// Field returns attrs.<name>. The result does not exist when the span has
// no such attribute, which callers treat as nothing to show.
func (s Span) Field(name string) gjson.Result {
	if len(s.Attrs) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(s.Attrs, name)
}

// Start is the start time, or the zero time when unknown.
func (s Span) Start() time.Time {
	if s.StartTS == nil {
		return time.Time{}
	}
	return epoch(*s.StartTS)
}

// Duration is the span's wall time. ok is false for spans still open or
// without a start.
func (s Span) Duration() (d time.Duration, ok bool) {
	if s.StartTS == nil || s.EndTS == nil {
		return 0, false
	}
	return epoch(*s.EndTS).Sub(epoch(*s.StartTS)), true
}

// Label is name, or name@node for spans recorded inside a node.
func (s Span) Label() string {
	if s.NodeID != nil && *s.NodeID != "" && *s.NodeID != s.Name {
		return s.Name + "@" + *s.NodeID
	}
	return s.Name
}

func epoch(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// FieldsFor names the two attributes compared for a span kind.
func FieldsFor(kind string) (before, after string) {
	if kind == KindNode {
		return "before_state", "after_state"
	}
	return "request", "response"
}

// Pair is a span matched across the two runs of a diff.
type Pair struct {
	Fingerprint string                     `json:"fingerprint"`
	Kind        string                     `json:"kind"`
	Name        string                     `json:"name"`
	NodeID      *string                    `json:"node_id,omitempty"`
	Left        Span                       `json:"left"`
	Right       Span                       `json:"right"`
	Diffs       map[string]json.RawMessage `json:"diffs,omitempty"`
}

// Fields names the two attributes compared for this pair.
func (p Pair) Fields() (string, string) {
	return FieldsFor(p.Kind)
}

// Values returns the left and right value of attribute name.
func (p Pair) Values(name string) (left, right gjson.Result) {
	return p.Left.Field(name), p.Right.Field(name)
}

// Patch returns the backend's RFC 6902 patch for attribute name.
func (p Pair) Patch(name string) (json.RawMessage, bool) {
	raw, ok := p.Diffs[name+"_patch"]
	return raw, ok && len(raw) > 0
}

// Label is the display label of the matched span.
func (p Pair) Label() string {
	return Span{Name: p.Name, NodeID: p.NodeID}.Label()
}

// Summary counts the outcome of span matching.
type Summary struct {
	Matched   int `json:"matched" yaml:"matched"`
	OnlyLeft  int `json:"only_left" yaml:"only_left"`
	OnlyRight int `json:"only_right" yaml:"only_right"`
}

// DiffResult is the backend's structural diff of two runs.
type DiffResult struct {
	LeftRun   Run     `json:"left_run"`
	RightRun  Run     `json:"right_run"`
	Summary   Summary `json:"summary"`
	Matched   []Pair  `json:"matched"`
	OnlyLeft  []Span  `json:"only_left"`
	OnlyRight []Span  `json:"only_right"`
}
