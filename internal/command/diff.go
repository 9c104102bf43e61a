// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/differ"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/meta"
)

// diffCommandAction compares two runs: the matching summary, a section per
// compared field of every matched span pair, then the unmatched spans.
func diffCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("executing action: cmd=diff args=%v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "diff") {
		return nil
	}

	left, right := cmd.Args().Get(0), cmd.Args().Get(1)
	mode, err := differ.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	be, err := newBackend(ctx, cmd)
	if err != nil {
		return err
	}
	op := fmt.Sprintf("diff %s %s", left, right)
	w := cmd.Root().Writer

	switch cmd.String("output") {
	case "raw":
		raw, err := be.Fetch(ctx, backend.DiffPath(left, right))
		if err != nil {
			return backend.Friendly(err, op, be.String())
		}
		_, err = w.Write(raw)
		return err
	case "json":
		res, err := be.Diff(ctx, left, right)
		if err != nil {
			return backend.Friendly(err, op, be.String())
		}
		out, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to encode diff: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	view := newDiffView(cmd, mode)

	if cmd.Bool("interactive") {
		seq := &backend.Sequencer{}
		load := func(ctx context.Context) (string, error) {
			res, err := be.Diff(ctx, left, right)
			if err != nil {
				return "", backend.Friendly(err, op, be.String())
			}
			var b strings.Builder
			view.render(&b, res)
			return b.String(), nil
		}
		return differ.RunPager(ctx, fmt.Sprintf("%s ↔ %s (%s)", left, right, mode), load, seq)
	}

	res, err := be.Diff(ctx, left, right)
	if err != nil {
		return backend.Friendly(err, op, be.String())
	}
	view.render(w, res)
	return nil
}

// newDiffFlags returns the flags shared by diff and compare.
func newDiffFlags(ns string) []cli.Flag {
	return []cli.Flag{
		NewModeFlag(ns, config.Path()),
		NewColorFlag(ns, config.Path()),
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"A"},
			Usage:   "also show sections without changes",
		},
		&cli.IntFlag{
			Name:    "width",
			Aliases: []string{"W"},
			Usage:   "split view width (default: terminal width)",
		},
	}
}

func diffCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "diff",
		Usage:     "compare the spans of two runs",
		UsageText: "tracediff diff LEFT_RUN RIGHT_RUN [options]",
		Flags: append(newDiffFlags("diff"),
			newInteractiveFlag(),
			&cli.StringFlag{
				Name:    "filter",
				Aliases: []string{"f"},
				Usage:   "comma-separated filters on matched pairs, e.g. kind!=node",
			},
			&cli.StringFlag{
				Name:    "kind",
				Aliases: []string{"k"},
				Usage:   "only pairs of this span kind",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "only pairs whose label contains this text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format (text, json, raw)",
				Value:   "text",
				Validator: func(value string) error {
					return FlagValidators(value, DiffOutputValidator)
				},
			},
		),
		Remote: true,
		Args:   [2]int{2, 2},
		Action: diffCommandAction,
		Meta:   meta,
	}).Build()
}
