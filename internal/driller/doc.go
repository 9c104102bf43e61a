// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller resolves dot paths against span payloads. It backs the
// --field flag of the tree command, the focus prompt of the tree browser and
// the keys of --attrs and --filter.
package driller
