// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/exec"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/attrs"
	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/meta"
	"github.com/tfctl/tracediff/internal/output"
)

// newBackend is swapped by tests for a client pointed at an httptest server.
var newBackend = func(ctx context.Context, cmd *cli.Command) (backend.Backend, error) {
	return backend.NewBackend(ctx, cmd)
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the record keys of the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(t, cmd.Root().Writer)
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr tracediff <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "tracediff", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// CommandBuilder constructs a cli.Command for subcommands using a consistent
// pattern: metadata wiring, the tldr flag, the namespaced server flag when
// the command talks to the backend, and sorted flags.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	// Remote adds the --server flag.
	Remote bool
	// Args bounds the positional arguments, [lo, hi].
	Args   [2]int
	Action func(context.Context, *cli.Command) error
	Meta   meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (cb *CommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{newTldrFlag()}, cb.Flags...)
	if cb.Remote {
		flags = append(flags, NewServerFlag(cb.Name, config.Path()))
	}

	return &cli.Command{
		Name:      cb.Name,
		Usage:     cb.Usage,
		UsageText: cb.UsageText,
		Metadata: map[string]any{
			"meta": cb.Meta,
		},
		Flags:  flags,
		Before: ArgCountValidator(cb.Args[0], cb.Args[1]),
		Action: cb.Action,
	}
}
