// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/tracediff/internal/log"
)

// Attr is one column of a listing: the dot path to read from each record and
// how to show it.
type Attr struct {
	// Key is the driller path read from the record, e.g. node_id or
	// attrs.request.model.
	Key string `yaml:"key" json:"Key"`
	// Include is false for attrs used only by --filter or --sort.
	Include bool `yaml:"include" json:"Include"`
	// OutputKey names the column.
	OutputKey string `yaml:"outputKey" json:"OutputKey"`
	// TransformSpec is a string of transform letters and an optional length,
	// e.g. "T" or "u,-12".
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

var lengthRe = regexp.MustCompile(`-?\d+`)

// Transform applies the transform spec to value.
//
//	t  local timestamp      T  time ago (humanized)
//	l  lower case           u  upper case
//	n  positive truncates to n runes, negative keeps both ends
//
// Timestamps may be RFC 3339 strings or epoch seconds. When letters repeat,
// the last one wins, so a global spec can be overridden per attr.
func (a *Attr) Transform(value interface{}) interface{} {
	if a.TransformSpec == "" {
		return value
	}

	var result string
	switch v := value.(type) {
	case string:
		result = v
	case float64:
		if !strings.ContainsAny(a.TransformSpec, "tT") {
			return value
		}
		result = epochToRFC3339(v)
	default:
		log.Tracef("value not transformable: type=%T", value)
		return value
	}

	result = transformTime(result, a.TransformSpec)
	result = transformCase(result, a.TransformSpec)
	return transformLength(result, a.TransformSpec)
}

func epochToRFC3339(ts float64) string {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC().Format(time.RFC3339Nano)
}

func transformTime(s, spec string) string {
	if !strings.ContainsAny(spec, "tT") {
		return s
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	if strings.Contains(spec, "T") {
		return humanize.Time(t)
	}
	return t.In(time.Local).Format("2006-01-02T15:04:05MST")
}

func transformCase(s, spec string) string {
	lastL := strings.LastIndexAny(spec, "lL")
	lastU := strings.LastIndexAny(spec, "uU")
	switch {
	case lastL > lastU:
		return strings.ToLower(s)
	case lastU > lastL:
		return strings.ToUpper(s)
	}
	return s
}

func transformLength(s, spec string) string {
	match := lengthRe.FindAllString(spec, -1)
	if len(match) == 0 {
		return s
	}
	l, _ := strconv.Atoi(match[len(match)-1])
	runes := []rune(s)
	abs := int(math.Abs(float64(l)))
	if len(runes) <= abs {
		return s
	}
	if l >= 0 {
		return string(runes[:l])
	}
	keep := max(abs/2-1, 1)
	return string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
}

// AttrList is the ordered set of columns of a listing.
type AttrList []Attr

// Set parses an --attrs value and merges it into the list. Each comma
// separated spec is key[:outputKey[:transform]]. A leading "!" keeps the attr
// for filtering and sorting but hides the column. A key of "*" carries a
// transform applied to every attr (see SetGlobalTransformSpec). Specs naming
// an attr already in the list update it in place.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		keyIdx = iota
		outputIdx
		transformIdx
	)

specloop:
	for _, spec := range strings.Split(value, ",") {
		fields := strings.Split(spec, ":")

		attr := Attr{Include: true}
		attr.Key = strings.TrimPrefix(strings.TrimSpace(fields[keyIdx]), ".")
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = strings.TrimPrefix(attr.Key[1:], ".")
		}
		if attr.Key == "" {
			return fmt.Errorf("empty attr key in %q", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		switch {
		case len(fields) == 1 || fields[outputIdx] == "":
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		default:
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(strings.Join(fields[transformIdx:], ":"))
		}
		log.Tracef("attr parsed: key=%s output=%s spec=%s include=%v",
			attr.Key, attr.OutputKey, attr.TransformSpec, attr.Include)

		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key {
				(*a)[i].Include = attr.Include
				if len(fields) > outputIdx && fields[outputIdx] != "" {
					(*a)[i].OutputKey = attr.OutputKey
				}
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the "*" attr's transform to every attr.
func (a *AttrList) SetGlobalTransformSpec() {
	spec := ""
	for _, attr := range *a {
		if attr.Key == "*" {
			spec = attr.TransformSpec
			break
		}
	}
	if spec == "" {
		return
	}

	for i := range *a {
		if (*a)[i].Key == "*" {
			continue
		}
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}
}

// Included returns the visible columns.
func (a AttrList) Included() AttrList {
	var out AttrList
	for _, attr := range a {
		if attr.Include {
			out = append(out, attr)
		}
	}
	return out
}

// String renders the list in --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Type is the flag type name.
func (a *AttrList) Type() string { return "list" }
