// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/tfctl/tracediff/internal/log"
)

const indent = "  "

// fallbackOptions pretty-prints without sorting. Width 0 keeps every array
// element on its own line.
var fallbackOptions = &pretty.Options{Width: 0, Prefix: "", Indent: indent, SortKeys: false}

// canonicalize is swapped in tests to exercise the fallback chain.
var canonicalize = canonical

// Text normalizes raw JSON. Empty input is an absent value and yields "".
func Text(raw []byte) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return ""
	}

	s, err := canonicalize(raw)
	if err == nil {
		return s
	}
	log.Tracef("canonical serialization failed: err=%v", err)

	if utf8.Valid(raw) && gjson.ValidBytes(raw) {
		return strings.TrimRight(string(pretty.PrettyOptions(raw, fallbackOptions)), "\n")
	}

	return string(raw)
}

// Result normalizes a gjson field. A field that does not exist is absent.
func Result(r gjson.Result) string {
	if !r.Exists() {
		return ""
	}
	return Text([]byte(r.Raw))
}

// Value normalizes an arbitrary Go value. An untyped nil is absent; use
// Text([]byte("null")) for an explicit JSON null.
func Value(v any) string {
	if v == nil {
		return ""
	}

	if raw, ok := v.(json.RawMessage); ok {
		return Text(raw)
	}

	raw, err := marshal(v)
	if err != nil {
		log.Tracef("value marshal failed: type=%T err=%v", v, err)
		return coerce(v)
	}
	return Text(raw)
}

// Lines splits normalized text on newlines. The empty text has zero lines so
// an absent value diffs as pure insertions or deletions.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// errInvalidUTF8 rejects input that encoding/json would silently repair with
// U+FFFD.
var errInvalidUTF8 = errors.New("invalid UTF-8 in JSON text")

// canonical decodes raw preserving number text, then re-encodes it. Maps are
// encoded with their keys sorted, which is the code point order for UTF-8.
func canonical(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	if dec.More() {
		return "", fmt.Errorf("trailing data after JSON value")
	}

	out, err := marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// coerce is the last resort. Containers are never formatted with fmt since a
// self-referencing map would recurse forever.
func coerce(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer, reflect.Interface:
		return fmt.Sprintf("<%T>", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
