// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/tfctl/tracediff/internal/log"
)

// maxSchemaDepth limits how far nested structs are walked.
const maxSchemaDepth = 1

var rawMessageType = reflect.TypeOf(json.RawMessage{})

// DumpSchema writes the sorted record keys of typ that --attrs, --filter and
// --sort accept. Free-form JSON fields are listed with a trailing ".*". If w is
// nil, os.Stdout is used.
func DumpSchema(typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	fmt.Fprintln(w,
		`Record keys available to the --attrs, --filter and --sort flags. Keys
ending in .* hold free-form JSON; address their members with a dot path, e.g.
attrs.request.model. Use --output=raw to see complete records.`)
	fmt.Fprintln(w, "")

	keys := dumpSchemaWalker("", typ, 0)
	if len(keys) == 0 {
		log.Debugf("no json tags found for type: %s", typ.Name())
		return
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintln(w, key)
	}
}

// dumpSchemaWalker walks a struct type collecting json tag names.
func dumpSchemaWalker(holder string, typ reflect.Type, depth int) []string {
	keys := make([]string, 0, typ.NumField())

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		ft := field.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}

		// Embedded structs contribute their fields at the same level.
		if field.Anonymous && ft.Kind() == reflect.Struct {
			keys = append(keys, dumpSchemaWalker(holder, ft, depth)...)
			continue
		}
		if !field.IsExported() {
			continue
		}

		name := jsonName(field)
		if name == "" {
			continue
		}
		if holder != "" {
			name = holder + "." + name
		}

		switch {
		case ft == rawMessageType || ft.Kind() == reflect.Map:
			keys = append(keys, name+".*")
		case ft.Kind() == reflect.Struct && depth < maxSchemaDepth:
			keys = append(keys, dumpSchemaWalker(name, ft, depth+1)...)
		default:
			keys = append(keys, name)
		}
	}

	return keys
}

// jsonName returns the json key of a field, or "" when it is not encoded.
func jsonName(field reflect.StructField) string {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
