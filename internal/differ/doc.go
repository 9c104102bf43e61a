// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package differ projects line edit scripts into display rows and renders
// them. Unified output passes the script through with "  ", "- " and "+ "
// prefixes. Split output folds it into two-column rows, merging a delete
// immediately followed by an insert into a single change row.
//
// Compare is the whole pipeline, normalize then diff then project, and is a
// pure function of its inputs. Results are memoized by a hash of the two
// normalized texts.
package differ
