// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/meta"
)

// InitApp builds the command tree for args. The subcommand in args[1] also
// becomes the config namespace, so diff.mode is preferred over mode.
func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// args[1] could be -h/--help, so ignore it if it appears to be a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	cfg, err := config.Load()
	if err != nil && config.Path() != "" {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.Config.Namespace = ns
	cfg.Namespace = ns

	meta := meta.Meta{
		Args:        args,
		Config:      cfg,
		Context:     ctx,
		Namespace:   ns,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "tracediff",
		Usage: "compare recorded execution traces",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "tracediff version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		compareCommandBuilder(meta),
		diffCommandBuilder(meta),
		healthCommandBuilder(meta),
		runsCommandBuilder(meta),
		spansCommandBuilder(meta),
		treeCommandBuilder(meta),
		completionCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
