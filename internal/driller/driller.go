// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var segmentRe = regexp.MustCompile(`^([a-zA-Z0-9_-]*)(\[(\d+|\*)?\])?$`)

// Driller navigates a JSON document with a dot path. See Drill.
func Driller(jsonData string, path string) gjson.Result {
	return Drill(gjson.Parse(jsonData), path)
}

// Drill navigates v with a dot path such as attrs.request.messages[1].content.
// A segment may index an array with [n]; [] or [*] keeps the whole array. An
// unindexed array with exactly one element is unwrapped to that element. A
// leading [n] indexes a root array. An empty path returns v.
func Drill(v gjson.Result, path string) gjson.Result {
	path = strings.TrimPrefix(strings.TrimSpace(path), ".")
	if path == "" {
		return v
	}

	current := v
	for _, p := range strings.Split(path, ".") {
		matches := segmentRe.FindStringSubmatch(p)
		if matches == nil || (matches[1] == "" && matches[2] == "") {
			return gjson.Result{}
		}

		index := -1
		if matches[3] != "" && matches[3] != "*" {
			i, err := strconv.Atoi(matches[3])
			if err != nil {
				return gjson.Result{}
			}
			index = i
		}

		val := current
		if matches[1] != "" {
			val = current.Get(matches[1])
		}

		if val.IsArray() {
			arr := val.Array()
			switch {
			case matches[2] == "" && len(arr) == 1:
				val = arr[0]
			case index == -1:
				// Keep the whole list.
			case index < len(arr):
				val = arr[index]
			default:
				return gjson.Result{}
			}
		} else if index >= 0 {
			return gjson.Result{}
		}

		if !val.Exists() {
			return gjson.Result{}
		}
		current = val
	}

	return current
}
