// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/tracediff/internal/log"
)

// IdenticalMessage is printed by the delta view when nothing changed.
const IdenticalMessage = "The values are identical."

// Delta renders a structural delta of two raw JSON values with gojsondiff's
// ASCII formatter. Values that are not objects are wrapped as {"value": v} and
// an absent value is the empty object. It reports whether the values differ.
func Delta(left, right []byte, colored bool) (string, bool, error) {
	log.Debugf(">> Delta() len=%d/%d", len(left), len(right))

	l, err := asObject(left)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode left value: %w", err)
	}
	r, err := asObject(right)
	if err != nil {
		return "", false, fmt.Errorf("failed to decode right value: %w", err)
	}

	delta := gojsondiff.New().CompareObjects(l, r)
	if !delta.Modified() {
		return IdenticalMessage, false, nil
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: true,
		Coloring:       colored,
	}

	out, err := formatter.NewAsciiFormatter(l, config).Format(delta)
	if err != nil {
		return "", true, fmt.Errorf("failed to format delta: %w", err)
	}
	return strings.TrimRight(out, "\n"), true, nil
}

func asObject(raw []byte) (map[string]interface{}, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]interface{}{}, nil
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if m, ok := v.(map[string]interface{}); ok {
		return m, nil
	}
	return map[string]interface{}{"value": v}, nil
}
