// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package linediff computes a minimal line edit script between two line
// sequences with a dynamic-programming longest common subsequence. The walk
// breaks ties toward deletions so identical inputs always produce identical
// scripts.
//
// Time and space are O(m*n). Inputs are individual span payloads, tens to low
// hundreds of lines, so no windowing is attempted.
package linediff
