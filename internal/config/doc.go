// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for tracediff's user
// configuration. The configuration is a YAML document located through
// TRACEDIFF_CFG_FILE or in the user's configuration directory, typically:
//   - Linux: $XDG_CONFIG_HOME/tracediff.yaml or $HOME/.config/tracediff.yaml
//   - macOS: $HOME/Library/Application Support/tracediff.yaml
//   - Windows: %APPDATA%/tracediff.yaml
//
// Keys may be namespaced by command. With Namespace "diff", a lookup of
// "mode" tries "diff.mode" first and falls back to "mode".
package config
