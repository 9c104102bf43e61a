// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"
	"io"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/tidwall/gjson"

	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/normalize"
)

// PatchReport describes an RFC 6902 patch supplied by the backend for a pair
// of values.
type PatchReport struct {
	// Ops is one readable line per operation.
	Ops []string
	// Verified is true when applying the patch to the left value reproduces
	// the right value.
	Verified bool
	// Err explains why verification failed or could not run.
	Err error
}

// VerifyPatch decodes ops, applies them to left and compares the outcome with
// right. Absent values are JSON null. Failures are recorded in the report,
// never returned, so one bad patch cannot hide the rest of a diff.
func VerifyPatch(ops, left, right []byte) PatchReport {
	rep := PatchReport{Ops: DescribePatch(ops)}

	if _, err := jsonpatch.DecodePatch(ops); err != nil {
		rep.Err = fmt.Errorf("failed to decode patch: %w", err)
		return rep
	}

	got, err := applyPatch(ops, orNull(left))
	if err != nil {
		rep.Err = fmt.Errorf("failed to apply patch: %w", err)
		return rep
	}

	rep.Verified = SameJSON(got, right)
	if !rep.Verified {
		rep.Err = fmt.Errorf("patched value differs from right value")
	}
	log.Debugf("patch verified=%t ops=%d", rep.Verified, len(rep.Ops))
	return rep
}

// applyPatch applies ops one at a time. Operations on the whole document
// (path "") swap it directly, as it may be null or a scalar.
func applyPatch(ops, doc []byte) ([]byte, error) {
	var err error
	gjson.ParseBytes(ops).ForEach(func(_, op gjson.Result) bool {
		if op.Get("path").String() == "" {
			switch op.Get("op").String() {
			case "add", "replace":
				doc = orNull([]byte(op.Get("value").Raw))
				return true
			case "remove":
				doc = []byte("null")
				return true
			}
		}

		var one jsonpatch.Patch
		if one, err = jsonpatch.DecodePatch([]byte("[" + op.Raw + "]")); err != nil {
			return false
		}
		doc, err = one.Apply(doc)
		return err == nil
	})
	return doc, err
}

// SameJSON reports whether two raw values are equal as JSON. Absent values
// are null.
func SameJSON(left, right []byte) bool {
	l, r := gjson.ParseBytes(orNull(left)), gjson.ParseBytes(orNull(right))
	switch {
	case l.IsObject() && r.IsObject(), l.IsArray() && r.IsArray():
		return jsonpatch.Equal([]byte(l.Raw), []byte(r.Raw))
	case l.IsObject() || l.IsArray() || r.IsObject() || r.IsArray():
		return false
	}
	return normalize.Text(orNull(left)) == normalize.Text(orNull(right))
}

// MergePatch computes an RFC 7386 merge patch from left to right, used when
// the backend supplied no patch (e.g. comparing local files). Equal values
// give "{}". When either side is not an object the patch is the whole right
// value, which is how a merge patch replaces a non-object target.
func MergePatch(left, right []byte) ([]byte, error) {
	if SameJSON(left, right) {
		return []byte("{}"), nil
	}
	l, r := orObject(left), orObject(right)
	if !gjson.ParseBytes(l).IsObject() || !gjson.ParseBytes(r).IsObject() {
		return []byte(compact(string(orNull(right)))), nil
	}

	p, err := jsonpatch.CreateMergePatch(l, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create merge patch: %w", err)
	}
	return p, nil
}

// DescribePatch turns RFC 6902 operations into lines such as
// "replace /a/b = 3" or "move /x -> /y".
func DescribePatch(ops []byte) []string {
	var lines []string
	gjson.ParseBytes(ops).ForEach(func(_, op gjson.Result) bool {
		path := op.Get("path").String()
		if path == "" {
			path = "/"
		}
		switch name := op.Get("op").String(); name {
		case "add", "replace", "test":
			lines = append(lines, fmt.Sprintf("%s %s = %s", name, path, compact(op.Get("value").Raw)))
		case "move", "copy":
			lines = append(lines, fmt.Sprintf("%s %s -> %s", name, op.Get("from").String(), path))
		default:
			lines = append(lines, fmt.Sprintf("%s %s", name, path))
		}
		return true
	})
	return lines
}

// RenderPatch writes a patch report with a verification marker.
func RenderPatch(w io.Writer, rep PatchReport, st Styles) {
	if len(rep.Ops) == 0 {
		fmt.Fprintln(w, st.paint(st.Context, PrefixContext+"(empty patch)"))
	}
	for _, line := range rep.Ops {
		style := st.Change
		switch {
		case strings.HasPrefix(line, "add "):
			style = st.Add
		case strings.HasPrefix(line, "remove "):
			style = st.Del
		}
		fmt.Fprintln(w, st.paint(style, PrefixContext+line))
	}
	if rep.Verified {
		fmt.Fprintln(w, st.paint(st.Context, "  ✓ patch reproduces right value"))
	} else if rep.Err != nil {
		fmt.Fprintln(w, st.paint(st.Del, "  ✗ "+rep.Err.Error()))
	}
}

func orNull(raw []byte) []byte {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []byte("null")
	}
	return raw
}

func orObject(raw []byte) []byte {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []byte("{}")
	}
	return raw
}

// compact strips insignificant whitespace from a raw JSON value.
func compact(raw string) string {
	if raw == "" {
		return "null"
	}
	return gjson.Parse(raw).Get("@ugly").Raw
}
