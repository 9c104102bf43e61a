// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package linediff

import (
	"errors"
	"fmt"

	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/normalize"
)

// Kind tags an Op.
type Kind int

const (
	Context Kind = iota
	Delete
	Insert
)

func (k Kind) String() string {
	switch k {
	case Context:
		return "context"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Op is one edit. Context carries both lines (equal), Delete only Left and
// Insert only Right.
type Op struct {
	Kind  Kind
	Left  string
	Right string
}

// Script is an ordered edit script from a left to a right line sequence.
type Script []Op

// ErrInvalidScript is returned by Apply and Validate when a script does not
// transform its inputs.
var ErrInvalidScript = errors.New("invalid edit script")

// Texts diffs two normalized texts line by line.
func Texts(left, right string) Script {
	return Lines(normalize.Lines(left), normalize.Lines(right))
}

// Lines computes the edit script from a to b.
func Lines(a, b []string) Script {
	m, n := len(a), len(b)
	log.Tracef("lcs table: %dx%d", m+1, n+1)

	// lcs[i][j] is the LCS length of a[i:] and b[j:], stored row-major.
	w := n + 1
	lcs := make([]int, (m+1)*w)
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i*w+j] = lcs[(i+1)*w+j+1] + 1
			} else {
				lcs[i*w+j] = max(lcs[(i+1)*w+j], lcs[i*w+j+1])
			}
		}
	}

	script := make(Script, 0, max(m, n))
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			script = append(script, Op{Kind: Context, Left: a[i], Right: b[j]})
			i++
			j++
		case lcs[(i+1)*w+j] >= lcs[i*w+j+1]:
			script = append(script, Op{Kind: Delete, Left: a[i]})
			i++
		default:
			script = append(script, Op{Kind: Insert, Right: b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		script = append(script, Op{Kind: Delete, Left: a[i]})
	}
	for ; j < n; j++ {
		script = append(script, Op{Kind: Insert, Right: b[j]})
	}

	return script
}

// HasChanges reports whether any op is not context.
func (s Script) HasChanges() bool {
	for _, op := range s {
		if op.Kind != Context {
			return true
		}
	}
	return false
}

// Stats counts ops by kind.
func (s Script) Stats() (context, deletes, inserts int) {
	for _, op := range s {
		switch op.Kind {
		case Context:
			context++
		case Delete:
			deletes++
		case Insert:
			inserts++
		}
	}
	return
}

// Apply replays the script against a and returns the resulting sequence.
// Context and Delete ops must consume a in order, and all of a must be
// consumed.
func (s Script) Apply(a []string) ([]string, error) {
	out := make([]string, 0, len(a))
	i := 0
	for k, op := range s {
		switch op.Kind {
		case Context, Delete:
			if i >= len(a) || a[i] != op.Left {
				return nil, fmt.Errorf("%w: op %d (%s) does not match left line %d", ErrInvalidScript, k, op.Kind, i)
			}
			if op.Kind == Context {
				if op.Right != op.Left {
					return nil, fmt.Errorf("%w: op %d context sides differ", ErrInvalidScript, k)
				}
				out = append(out, op.Right)
			}
			i++
		case Insert:
			out = append(out, op.Right)
		default:
			return nil, fmt.Errorf("%w: op %d has unknown kind %d", ErrInvalidScript, k, op.Kind)
		}
	}
	if i != len(a) {
		return nil, fmt.Errorf("%w: %d left lines not consumed", ErrInvalidScript, len(a)-i)
	}
	return out, nil
}

// Validate checks that the script turns a into b.
func (s Script) Validate(a, b []string) error {
	got, err := s.Apply(a)
	if err != nil {
		return err
	}
	if len(got) != len(b) {
		return fmt.Errorf("%w: produced %d lines, want %d", ErrInvalidScript, len(got), len(b))
	}
	for i := range got {
		if got[i] != b[i] {
			return fmt.Errorf("%w: line %d is %q, want %q", ErrInvalidScript, i, got[i], b[i])
		}
	}
	return nil
}
