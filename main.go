// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tfctl/tracediff/internal/cacheutil"
	"github.com/tfctl/tracediff/internal/command"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs expands @set arguments and drops repeated flags so the
// last occurrence wins.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	args = deduplicateFlags(args)
	log.Debugf("args after dedup: args=%v", args)
	return args
}

// processSetOnly expands an @name argument into the string slice found at
// <command>.<name> in the config, inserted where @name appeared.
func processSetOnly(args []string) []string {
	if len(args) < 3 {
		return args
	}

	idx := -1
	for i, a := range args[2:] {
		if strings.HasPrefix(a, "@") && len(a) > 1 {
			idx = i + 2
			break
		}
	}
	if idx == -1 {
		return args
	}

	key := args[1] + "." + args[idx][1:]
	entries, err := config.GetStringSlice(key)
	if err != nil || len(entries) == 0 {
		log.Warnf("set not found in config: %s", key)
	}

	var expanded []string
	for _, entry := range entries {
		expanded = append(expanded, strings.Fields(entry)...)
	}

	out := make([]string, 0, len(args)+len(expanded))
	out = append(out, args[:idx]...)
	out = append(out, expanded...)
	return append(out, args[idx+1:]...)
}

// deduplicateFlags removes repeated flags, keeping the last occurrence.
// "--output=json" and "--output json" are the same flag. A flag followed by
// a token that is not itself a flag is taken to carry that token as its
// value. Everything after "--" is passed through.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type group struct {
		key    string
		tokens []string
	}

	var groups []group
	rest := args[2:]
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if a == "--" {
			groups = append(groups, group{tokens: rest[i:]})
			break
		}
		if !isFlag(a) {
			groups = append(groups, group{tokens: []string{a}})
			continue
		}

		key, _, hasValue := strings.Cut(a, "=")
		g := group{key: key, tokens: []string{a}}
		if !hasValue && i+1 < len(rest) && !isFlag(rest[i+1]) && rest[i+1] != "--" {
			i++
			g.tokens = append(g.tokens, rest[i])
		}
		groups = append(groups, g)
	}

	last := map[string]int{}
	for i, g := range groups {
		if g.key != "" {
			last[g.key] = i
		}
	}

	out := append([]string{}, args[:2]...)
	for i, g := range groups {
		if g.key != "" && last[g.key] != i {
			continue
		}
		out = append(out, g.tokens...)
	}
	return out
}

// isFlag is true for -x and --xyz but not for "-" which names stdin.
func isFlag(a string) bool {
	return len(a) > 1 && a[0] == '-' && a != "--"
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}
