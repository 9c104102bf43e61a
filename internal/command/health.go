// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/meta"
)

func healthCommandAction(ctx context.Context, cmd *cli.Command) error {
	be, err := newBackend(ctx, cmd)
	if err != nil {
		return err
	}

	msg, err := be.Health(ctx)
	if err != nil {
		return backend.Friendly(err, "check health", be.String())
	}
	fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", be, msg)
	return nil
}

func healthCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "health",
		Usage:     "check that the trace backend is reachable",
		UsageText: "tracediff health [--server URL]",
		Remote:    true,
		Action:    healthCommandAction,
		Meta:      meta,
	}).Build()
}
