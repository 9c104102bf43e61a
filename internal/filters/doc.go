// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects records from a listing, or matched pairs of a diff,
// with --filter expressions.
//
// Each expression is key, operator and target. Expressions are joined with a
// comma, or with TRACEDIFF_FILTER_DELIM when targets contain commas. A record
// passes when it matches every expression.
//
// Operators, all negatable with a leading '!':
//
//   - = : equality (numeric when the value is a number)
//   - ~ : case-insensitive equality
//   - ^ : prefix
//   - < : less than (numeric or lexical)
//   - > : greater than (numeric or lexical)
//   - @ : substring, or membership for lists and objects
//   - / : regular expression
//
// A key without an operator only requires the value to exist.
//
// Examples:
//
//   - "status=failed"
//   - "kind!=node"
//   - "name^llm"
//   - "duration_ms>250"
//   - "attrs.request.model/^gpt-"
//
// Keys name an attr by its OutputKey (see the attrs package). Keys that name
// no attr are read from the record as a driller path.
package filters
