// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/differ"
	"github.com/tfctl/tracediff/internal/filters"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/output"
)

// diffView renders comparisons. Pairs are selected by kind, label substring
// and --filter; a section is shown only when it changed, unless All is set.
type diffView struct {
	Mode   differ.Mode
	All    bool
	Name   string
	Kind   string
	Filter string
	Width  int
	Styles differ.Styles
	Differ *differ.Differ
}

func newDiffView(cmd *cli.Command, mode differ.Mode) diffView {
	memo, err := config.GetInt("memo_size", differ.DefaultMemoSize)
	if err != nil {
		log.Warnf("ignoring memo_size: %v", err)
		memo = differ.DefaultMemoSize
	}

	width := cmd.Int("width")
	if width <= 0 {
		width = differ.TerminalWidth()
	}

	return diffView{
		Mode:   mode,
		All:    cmd.Bool("all"),
		Name:   cmd.String("name"),
		Kind:   cmd.String("kind"),
		Filter: cmd.String("filter"),
		Width:  width,
		Styles: differ.NewStyles(cmd.Bool("color")),
		Differ: differ.New(memo),
	}
}

// render writes the summary, the sections of every selected pair and the
// unmatched spans. It returns the number of sections with changes.
func (v diffView) render(w io.Writer, res *backend.DiffResult) int {
	output.WriteSummary(w, res, output.TableOptions{Color: v.Styles.Color, Padding: 2})

	changed := 0
	for _, p := range res.Matched {
		if !v.selects(p) {
			continue
		}
		before, after := p.Fields()
		for _, field := range []string{before, after} {
			l, r := p.Values(field)
			// Nothing to show when neither side recorded the field.
			if !l.Exists() && !r.Exists() {
				continue
			}
			patch, _ := p.Patch(field)
			title := fmt.Sprintf("%s [%s] %s", p.Label(), p.Kind, field)
			if v.section(w, title, rawOf(l), rawOf(r), patch) {
				changed++
			}
		}
	}

	fmt.Fprintln(w)
	output.WriteUnmatched(w, "left", res.OnlyLeft)
	output.WriteUnmatched(w, "right", res.OnlyRight)
	log.Debugf("diff rendered: pairs=%d changed=%d memo=%d", len(res.Matched), changed, v.Differ.Len())
	return changed
}

func (v diffView) selects(p backend.Pair) bool {
	if v.Kind != "" && p.Kind != v.Kind {
		return false
	}
	if v.Name != "" && !strings.Contains(p.Label(), v.Name) {
		return false
	}
	if v.Filter != "" {
		raw, err := json.Marshal(p)
		if err != nil {
			log.Errorf("failed to encode pair %s: %v", p.Label(), err)
			return false
		}
		return filters.Match(gjson.ParseBytes(raw), nil, v.Filter)
	}
	return true
}

// section writes one titled comparison and reports whether the values
// differ. Unchanged sections are skipped unless v.All is set. patch is the
// backend's RFC 6902 patch, if any, for patch mode.
func (v diffView) section(w io.Writer, title string, left, right []byte, patch json.RawMessage) bool {
	var (
		body    strings.Builder
		changed bool
	)

	switch v.Mode {
	case differ.ModeDelta:
		out, ch, err := differ.Delta(left, right, v.Styles.Color)
		if err != nil {
			fmt.Fprintf(&body, "  error: %v\n", err)
			ch = true
		} else {
			fmt.Fprintln(&body, out)
		}
		changed = ch
	case differ.ModePatch:
		if len(patch) > 0 {
			rep := differ.VerifyPatch(patch, left, right)
			differ.RenderPatch(&body, rep, v.Styles)
			changed = len(rep.Ops) > 0
			break
		}
		mp, err := differ.MergePatch(left, right)
		if err != nil {
			fmt.Fprintf(&body, "  error: %v\n", err)
			changed = true
			break
		}
		changed = !differ.SameJSON(left, right)
		fmt.Fprintf(&body, "  merge patch: %s\n", mp)
	default:
		res := v.Differ.Compare(left, right)
		changed = res.HasChanges()
		if v.Mode == differ.ModeSplit {
			differ.RenderSplit(&body, res.Rows(), v.Width, v.Styles)
		} else {
			differ.RenderUnified(&body, differ.Unified(res.Script), v.Styles)
		}
	}

	if !changed && !v.All {
		return false
	}

	if !changed {
		title += " (no changes)"
	}
	if v.Styles.Color {
		title = v.Styles.Header.Render(title)
	}
	fmt.Fprintf(w, "\n%s\n%s", title, body.String())
	return changed
}

// rawOf returns the raw JSON of r, or nil when r does not exist.
func rawOf(r gjson.Result) []byte {
	if !r.Exists() {
		return nil
	}
	return []byte(r.Raw)
}
