// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"

	"github.com/tfctl/tracediff/internal/linediff"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/normalize"
)

// Mode selects how a comparison is displayed.
type Mode string

const (
	ModeSplit   Mode = "split"
	ModeUnified Mode = "unified"
	ModeDelta   Mode = "delta"
	ModePatch   Mode = "patch"
)

// Modes lists every accepted mode, in help order.
var Modes = []Mode{ModeSplit, ModeUnified, ModeDelta, ModePatch}

// ErrInvalidMode is returned by ParseMode.
var ErrInvalidMode = errors.New("invalid display mode")

// ParseMode validates a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Modes {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of %v", ErrInvalidMode, s, Modes)
}

// RowKind tags a split Row.
type RowKind int

const (
	RowContext RowKind = iota
	RowAdd
	RowDel
	RowChange
)

func (k RowKind) String() string {
	switch k {
	case RowContext:
		return "context"
	case RowAdd:
		return "add"
	case RowDel:
		return "del"
	case RowChange:
		return "change"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// Row is one line of the split view. Add rows carry only Right, del rows
// only Left, context and change rows both.
type Row struct {
	Kind  RowKind
	Left  *string
	Right *string
}

// LeftText returns the left side or "".
func (r Row) LeftText() string {
	if r.Left == nil {
		return ""
	}
	return *r.Left
}

// RightText returns the right side or "".
func (r Row) RightText() string {
	if r.Right == nil {
		return ""
	}
	return *r.Right
}

func ptr(s string) *string { return &s }

// Unified is the unified projection: the script itself.
func Unified(s linediff.Script) []linediff.Op {
	return s
}

// Split folds a script into rows. An insert directly after a del row whose
// right side is still empty fills that row and turns it into a change. This
// is a one-step lookback, not a second diff: in a run of deletes followed by
// inserts only the last delete pairs up.
func Split(s linediff.Script) []Row {
	rows := make([]Row, 0, len(s))
	for _, op := range s {
		switch op.Kind {
		case linediff.Context:
			rows = append(rows, Row{Kind: RowContext, Left: ptr(op.Left), Right: ptr(op.Right)})
		case linediff.Delete:
			rows = append(rows, Row{Kind: RowDel, Left: ptr(op.Left)})
		case linediff.Insert:
			if n := len(rows); n > 0 && rows[n-1].Kind == RowDel && rows[n-1].Right == nil {
				rows[n-1].Kind = RowChange
				rows[n-1].Right = ptr(op.Right)
				continue
			}
			rows = append(rows, Row{Kind: RowAdd, Right: ptr(op.Right)})
		}
	}
	return rows
}

// RowsHaveChanges reports whether any row is not context.
func RowsHaveChanges(rows []Row) bool {
	for _, r := range rows {
		if r.Kind != RowContext {
			return true
		}
	}
	return false
}

// Result is one comparison. Left and Right are the normalized texts. Script
// may be shared with the memo and must not be modified.
type Result struct {
	Left   string
	Right  string
	Script linediff.Script
}

// HasChanges reports whether the two values differ.
func (r Result) HasChanges() bool {
	return r.Script.HasChanges()
}

// Rows is the split projection of the result.
func (r Result) Rows() []Row {
	return Split(r.Script)
}

// Differ runs comparisons and memoizes edit scripts. The zero value is not
// usable; call New.
type Differ struct {
	mu   sync.Mutex
	memo *lru.Cache
}

// DefaultMemoSize bounds the number of memoized scripts.
const DefaultMemoSize = 128

// New returns a Differ memoizing up to size scripts. size <= 0 disables the
// memo.
func New(size int) *Differ {
	d := &Differ{}
	if size > 0 {
		d.memo = lru.New(size)
	}
	return d
}

var defaultDiffer = New(DefaultMemoSize)

// Compare normalizes and diffs two raw JSON values with the default Differ.
// Empty input is an absent value.
func Compare(left, right []byte) Result {
	return defaultDiffer.Compare(left, right)
}

// Compare normalizes and diffs two raw JSON values.
func (d *Differ) Compare(left, right []byte) Result {
	return d.CompareTexts(normalize.Text(left), normalize.Text(right))
}

// CompareTexts diffs two already normalized texts.
func (d *Differ) CompareTexts(left, right string) Result {
	res := Result{Left: left, Right: right}

	key := memoKey(left, right)
	if d.memo != nil {
		d.mu.Lock()
		v, ok := d.memo.Get(key)
		d.mu.Unlock()
		if ok {
			log.Tracef("diff memo hit: key=%s", key[:12])
			res.Script = v.(linediff.Script)
			return res
		}
	}

	res.Script = linediff.Texts(left, right)

	if d.memo != nil {
		d.mu.Lock()
		d.memo.Add(key, res.Script)
		d.mu.Unlock()
	}
	return res
}

// Len returns the number of memoized scripts.
func (d *Differ) Len() int {
	if d.memo == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.memo.Len()
}

func memoKey(left, right string) string {
	h := sha256.New()
	h.Write([]byte(strconv.Itoa(len(left)) + ":"))
	h.Write([]byte(left))
	h.Write([]byte(right))
	return hex.EncodeToString(h.Sum(nil))
}
