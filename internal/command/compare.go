// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/differ"
	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/meta"
	"github.com/tfctl/tracediff/internal/util"
)

// compareCommandAction diffs two local JSON documents. Either may be "-" for
// stdin. An empty document is an absent value.
func compareCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("executing action: cmd=compare args=%v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, "compare") {
		return nil
	}

	mode, err := differ.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	docs, err := util.ReadInputs(cmd.Root().Reader, names...)
	if err != nil {
		return err
	}
	for i, doc := range docs {
		if len(bytes.TrimSpace(doc)) > 0 && !gjson.ValidBytes(doc) {
			return fmt.Errorf("%s is not valid JSON", names[i])
		}
	}

	w := cmd.Root().Writer
	view := newDiffView(cmd, mode)
	title := fmt.Sprintf("%s ↔ %s", names[0], names[1])
	if !view.section(w, title, docs[0], docs[1], nil) && !view.All {
		fmt.Fprintln(w, differ.IdenticalMessage)
	}
	return nil
}

func compareCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "compare",
		Usage:     "compare two JSON documents",
		UsageText: "tracediff compare LEFT.json RIGHT.json [options]",
		Flags:     newDiffFlags("compare"),
		Args:      [2]int{2, 2},
		Action:    compareCommandAction,
		Meta:      meta,
	}).Build()
}
