// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package valuetree renders JSON values as collapsible trees.
//
// Leaves print as "key: literal". Containers print a header, Object(n) or
// Array(n), and hide their children while collapsed. Objects keep document
// order; nothing is sorted here.
//
// Expansion flags live in a State keyed by path, not by value. A flag is
// created the first time its path is built, from the policy "collapsed iff
// depth >= DefaultCollapsedDepth", and is never recomputed afterwards. Swapping
// the value under a mounted State therefore keeps the old expand/collapse
// choices for paths that still exist.
package valuetree
