// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/driller"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/meta"
	"github.com/tfctl/tracediff/internal/util"
	"github.com/tfctl/tracediff/internal/valuetree"
)

var errSpanRef = errors.New("--run and --span must be used together")

// treeCommandAction renders a JSON value as a collapsible tree. The value is
// read from a file or stdin, or from a span recorded by the backend.
func treeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("executing action: cmd=tree args=%v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "tree") {
		return nil
	}

	v, err := treeValue(ctx, cmd)
	if err != nil {
		return err
	}

	if path := cmd.String("path"); path != "" {
		v = driller.Drill(valuetree.Unwrap(v), path)
		if !v.Exists() {
			return fmt.Errorf("no value at %s", path)
		}
	}

	st := valuetree.NewState(cmd.Int("depth"))
	styles := valuetree.PlainStyles()
	if cmd.Bool("color") {
		key, _ := config.GetString("colors.key", "")
		index, _ := config.GetString("colors.index", "")
		styles = valuetree.DefaultStyles(key, index)
	}

	if cmd.Bool("interactive") {
		return valuetree.Run(v, st, styles)
	}
	return valuetree.Render(cmd.Root().Writer, valuetree.Build(v, st), styles)
}

// treeValue resolves the value to render.
func treeValue(ctx context.Context, cmd *cli.Command) (gjson.Result, error) {
	runID, spanID := cmd.String("run"), cmd.String("span")
	if (runID == "") != (spanID == "") {
		return gjson.Result{}, errSpanRef
	}

	if runID == "" {
		name := cmd.Args().First()
		raw, err := util.ReadInput(name, cmd.Root().Reader)
		if err != nil {
			return gjson.Result{}, err
		}
		if !gjson.ValidBytes(raw) {
			return gjson.Result{}, fmt.Errorf("%s is not valid JSON", nonEmpty(name, util.Stdin))
		}
		return gjson.ParseBytes(raw), nil
	}

	be, err := newBackend(ctx, cmd)
	if err != nil {
		return gjson.Result{}, err
	}
	spans, err := be.Spans(ctx, runID)
	if err != nil {
		return gjson.Result{}, backend.Friendly(err, "list spans of "+runID, be.String())
	}

	for _, s := range spans {
		if s.ID != spanID {
			continue
		}
		field := cmd.String("field")
		if field == "" {
			return gjson.ParseBytes(s.Attrs), nil
		}
		v := s.Field(field)
		if !v.Exists() {
			return gjson.Result{}, fmt.Errorf("span %s has no field %s", spanID, field)
		}
		return v, nil
	}
	return gjson.Result{}, fmt.Errorf("span %s not found in run %s", spanID, runID)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func treeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "tree",
		Usage:     "render a JSON value as a collapsible tree",
		UsageText: "tracediff tree [FILE|-] [options]\ntracediff tree --run RUN --span SPAN [--field FIELD] [options]",
		Flags: []cli.Flag{
			NewDepthFlag("tree", config.Path()),
			NewColorFlag("tree", config.Path()),
			newInteractiveFlag(),
			&cli.StringFlag{
				Name:  "run",
				Usage: "run holding the span",
			},
			&cli.StringFlag{
				Name:  "span",
				Usage: "span whose attributes are rendered",
			},
			&cli.StringFlag{
				Name:  "field",
				Usage: "span attribute to render, e.g. after_state (default: all attributes)",
			},
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "dot path of the subtree to render, e.g. messages[0]",
			},
		},
		Remote: true,
		Args:   [2]int{0, 1},
		Action: treeCommandAction,
		Meta:   meta,
	}).Build()
}
