// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/meta"
)

// spanRow is a span as listed, with its wall time precomputed so it can be
// shown, filtered and sorted like any other attribute.
type spanRow struct {
	backend.Span
	DurationMS *float64 `json:"duration_ms,omitempty"`
}

// spansDefaultAttrs specifies the default attributes displayed for spans.
var spansDefaultAttrs = []string{"name", "kind", "node_id:node", "start_ts:start:t", "duration_ms:ms"}

func spanRows(spans []backend.Span) []spanRow {
	rows := make([]spanRow, 0, len(spans))
	for _, s := range spans {
		row := spanRow{Span: s}
		if d, ok := s.Duration(); ok {
			ms := float64(d) / float64(time.Millisecond)
			row.DurationMS = &ms
		}
		rows = append(rows, row)
	}
	return rows
}

// spansCommandAction lists the spans of one run in recording order.
func spansCommandAction(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.Args().First()

	be, err := newBackend(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("titles") {
		cmd.Metadata["header"] = fmt.Sprintf("Spans of run %s:", runID)
	}

	return (&ListActionRunner{
		CommandName:  "spans",
		SchemaType:   reflect.TypeOf(spanRow{}),
		DefaultAttrs: spansDefaultAttrs,
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]byte, string, error) {
			if cmd.String("output") == "raw" {
				raw, err := be.Fetch(ctx, backend.SpansPath(runID))
				if err != nil {
					return nil, "", backend.Friendly(err, "list spans of "+runID, be.String())
				}
				return raw, "", nil
			}

			spans, err := be.Spans(ctx, runID)
			if err != nil {
				return nil, "", backend.Friendly(err, "list spans of "+runID, be.String())
			}
			raw, err := json.Marshal(spanRows(spans))
			if err != nil {
				return nil, "", fmt.Errorf("failed to encode spans: %w", err)
			}
			return raw, "", nil
		},
	}).Run(ctx, cmd)
}

func spansCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "spans",
		Usage:     "list the spans of a run",
		UsageText: "tracediff spans RUN [options]",
		Flags:     append([]cli.Flag{newSchemaFlag()}, NewGlobalFlags("spans", config.Path())...),
		Remote:    true,
		Args:      [2]int{1, 1},
		Action:    spansCommandAction,
		Meta:      meta,
	}).Build()
}
