// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package normalize canonicalizes JSON values into deterministic text so that
// line-level diffing lines up matching structure. Object keys are sorted by
// code point at every level, arrays keep their order, and the result is
// indented with two spaces, one element per line.
//
// Normalization never fails. When canonical serialization is impossible the
// original value is pretty-printed unsorted, and failing that it is coerced to
// a string.
package normalize
