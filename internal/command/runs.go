// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/meta"
)

// runsDefaultAttrs specifies the default attributes displayed for runs.
var runsDefaultAttrs = []string{"id", "status", "thread_id:thread", "graph_signature:graph:-14"}

// runsCommandAction lists the runs known to the backend.
func runsCommandAction(ctx context.Context, cmd *cli.Command) error {
	be, err := newBackend(ctx, cmd)
	if err != nil {
		return err
	}

	return (&ListActionRunner{
		CommandName:  "runs",
		SchemaType:   reflect.TypeOf(backend.Run{}),
		DefaultAttrs: runsDefaultAttrs,
		FetchFn: func(ctx context.Context, _ *cli.Command) ([]byte, string, error) {
			raw, err := be.Fetch(ctx, backend.RunsPath())
			if err != nil {
				return nil, "", backend.Friendly(err, "list runs", be.String())
			}
			return raw, "runs", nil
		},
	}).Run(ctx, cmd)
}

func runsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "runs",
		Usage:     "list runs",
		UsageText: "tracediff runs [options]",
		Flags:     append([]cli.Flag{newSchemaFlag()}, NewGlobalFlags("runs", config.Path())...),
		Remote:    true,
		Action:    runsCommandAction,
		Meta:      meta,
	}).Build()
}
