// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package output filters, sorts and writes record listings as text tables,
// JSON or YAML, and writes the summary of a run diff.
package output
