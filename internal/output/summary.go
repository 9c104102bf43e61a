// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/tracediff/internal/attrs"
	"github.com/tfctl/tracediff/internal/backend"
)

var summaryAttrs = attrs.AttrList{
	{Key: "matched", OutputKey: "matched", Include: true},
	{Key: "only_left", OutputKey: "only_left", Include: true},
	{Key: "only_right", OutputKey: "only_right", Include: true},
}

// FormatDuration renders span wall time, e.g. 12.5ms, 1.23s or 2m5s.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return humanize.FtoaWithDigits(float64(d)/float64(time.Millisecond), 1) + "ms"
	case d < time.Minute:
		return humanize.FtoaWithDigits(d.Seconds(), 2) + "s"
	default:
		return d.Round(time.Second).String()
	}
}

// WriteSummary writes the two runs of a diff and the outcome of span
// matching.
func WriteSummary(w io.Writer, res *backend.DiffResult, opts TableOptions) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "left:  %s (%s)\n", res.LeftRun.ID, res.LeftRun.Status)
	fmt.Fprintf(w, "right: %s (%s)\n", res.RightRun.ID, res.RightRun.Status)

	row := map[string]interface{}{
		"matched":    strconv.Itoa(res.Summary.Matched),
		"only_left":  strconv.Itoa(res.Summary.OnlyLeft),
		"only_right": strconv.Itoa(res.Summary.OnlyRight),
	}
	opts.Titles = true
	TableWriter([]map[string]interface{}{row}, summaryAttrs, opts, w)
}

// WriteUnmatched lists spans found on one side only. Nothing is written when
// spans is empty.
func WriteUnmatched(w io.Writer, side string, spans []backend.Span) {
	if len(spans) == 0 {
		return
	}
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintf(w, "only in %s (%d):\n", side, len(spans))
	for _, s := range spans {
		took := "-"
		if d, ok := s.Duration(); ok {
			took = FormatDuration(d)
		}
		fmt.Fprintf(w, "  - %s [%s] %s\n", s.Label(), s.Kind, took)
	}
}
