// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tfctl/tracediff/internal/attrs"
	"github.com/tfctl/tracediff/internal/driller"
	"github.com/tfctl/tracediff/internal/log"
)

// filterRegex splits a filter expression into key, operator and target.
// Operators are one of = ^ ~ < > @ or /, optionally prefixed with '!'.
// Examples: "kind" (key only), "status=failed", "name!^llm".
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`
}

// BuildFilters parses a filter specification string into a slice of Filter.
// Malformed entries are logged and skipped.
func BuildFilters(spec string) []Filter {
	//nolint:prealloc
	var filters []Filter

	if spec == "" {
		return filters
	}

	// Allow an override for values that contain commas.
	delim := ","
	if d, ok := os.LookupEnv("TRACEDIFF_FILTER_DELIM"); ok && d != "" {
		delim = d
	}

	for _, filterSpec := range strings.Split(spec, delim) {
		filterSpec = strings.TrimSpace(filterSpec)
		if filterSpec == "" {
			continue
		}

		parts := filterRegex.FindStringSubmatch(filterSpec)
		if parts == nil {
			log.Errorf("invalid filter: %s", filterSpec)
			continue
		}

		key := strings.TrimPrefix(strings.TrimSpace(parts[1]), ".")
		operand := parts[2]
		target := parts[3]

		if key == "" {
			log.Errorf("invalid filter: empty key in %s", filterSpec)
			continue
		}

		negate := strings.HasPrefix(operand, "!")
		operand = strings.TrimPrefix(operand, "!")

		filters = append(filters, Filter{
			Key:     key,
			Negate:  negate,
			Operand: operand,
			Value:   target,
		})
	}

	return filters
}

// FilterDataset returns the candidates that pass every filter in spec, each
// reduced to a map of OutputKey to raw value. Transforms are left to the
// output phase.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	//nolint:prealloc // Don't prealloc because we don't know what len will be.
	var filteredResults []map[string]interface{}

	filters := BuildFilters(spec)

	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, attrs, filters) {
			continue
		}

		result := make(map[string]interface{}, len(attrs))
		for _, attr := range attrs {
			result[attr.OutputKey] = driller.Drill(candidate, attr.Key).Value()
		}
		filteredResults = append(filteredResults, result)
	}

	return filteredResults
}

// Match reports whether a single candidate passes every filter in spec. It is
// used where records are not projected through an attr list, such as the
// matched pairs of a diff.
func Match(candidate gjson.Result, attrs attrs.AttrList, spec string) bool {
	return applyFilters(candidate, attrs, BuildFilters(spec))
}

// applyFilters returns true if the candidate matches all of the filters. A
// filter key names an attr by its OutputKey; keys that name no attr are read
// from the candidate as a path.
func applyFilters(candidate gjson.Result, attrs attrs.AttrList,
	filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}

	for _, filter := range filters {
		key := filter.Key
		for _, attr := range attrs {
			if attr.OutputKey == filter.Key {
				key = attr.Key
				break
			}
		}

		value := driller.Drill(candidate, key).Value()
		if value == nil {
			return false
		}
		// A bare key asks only for presence.
		if filter.Operand == "" {
			continue
		}

		result := true
		switch v := value.(type) {
		case string:
			result = checkStringOperand(v, filter)
		case bool:
			result = checkStringOperand(fmt.Sprintf("%v", v), filter)
		default:
			if num, ok := toFloat64(value); ok {
				result = checkNumericOperand(num, filter)
			} else if filter.Operand == "@" {
				result = checkContainsOperand(value, filter)
			}
		}

		if !result {
			return false
		}
	}

	return true
}

// checkContainsOperand evaluates a membership style filter (operand '@')
// against slice or map values.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if item == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]any:
		_, found := val[filter.Value]
		if filter.Negate {
			return !found
		}
		return found
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand compares a numeric value against the filter value using
// numeric semantics. Supported operands: =, >, < and the negated form via
// filter.Negate (e.g., != is represented as Negate + "=").
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		log.Errorf("invalid numeric value: %s", filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) == !filter.Negate
	case ">":
		return (value > tgt) == !filter.Negate
	case "<":
		return (value < tgt) == !filter.Negate
	default:
		log.Errorf("unsupported numeric operand: %s", filter.Operand)
		return false
	}
}

// checkStringOperand evaluates a string comparison style filter against the
// provided value using the operand semantics.
func checkStringOperand(value string, filter Filter) bool {
	switch filter.Operand {
	case "=":
		return value == filter.Value == !filter.Negate
	case "~":
		return strings.EqualFold(value, filter.Value) == !filter.Negate
	case "^":
		return strings.HasPrefix(value, filter.Value) == !filter.Negate
	case ">":
		return value > filter.Value == !filter.Negate
	case "<":
		return value < filter.Value == !filter.Negate
	case "@":
		return strings.Contains(value, filter.Value) == !filter.Negate
	case "/":
		matched, err := regexp.MatchString(filter.Value, value)
		if err != nil {
			log.Errorf("invalid regex: %s", filter.Value)
			return false
		}
		return matched == !filter.Negate
	default:
		log.Errorf("unsupported filtering operand: %s", filter.Operand)
		return false
	}
}

// toFloat64 attempts to normalize various numeric types to float64.
// Returns (0, false) if v is not a recognized numeric type.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
