// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/log"
	"github.com/tfctl/tracediff/internal/output"
)

// ListActionRunner encapsulates the common listing pattern of the runs and
// spans commands: short-circuit checks, attrs, fetch, then output. FetchFn
// returns the raw JSON document and the path of the record list inside it.
type ListActionRunner struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) (raw []byte, parent string, err error)
}

// Run executes the listing with the provided context and command.
func (lar *ListActionRunner) Run(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("executing action: cmd=%s args=%v", lar.CommandName, m.Args)

	if ShortCircuitTLDR(ctx, cmd, lar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, lar.SchemaType) {
		return nil
	}

	al := BuildAttrs(cmd, lar.DefaultAttrs...)
	log.Debugf("attrs: %s", al.String())

	raw, parent, err := lar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	return output.SliceDiceSpit(raw, al, output.OptionsFrom(cmd), parent, cmd.Root().Writer, nil)
}
