// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/differ"
)

// Flags are built fresh for each command; cli keeps parsed state on them.

func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the record keys usable with --attrs, --filter and --sort",
		HideDefault: true,
	}
}

func newTldrFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

func newInteractiveFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "interactive",
		Aliases:     []string{"i"},
		Usage:       "open the full-screen viewer",
		HideDefault: true,
	}
}

// NewGlobalFlags returns the flags shared by the listing commands. params[0]
// is the command namespace and params[1] the config file.
func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		NewColorFlag(params...),
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show local timestamps",
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.IntFlag{
			Name:  "padding",
			Usage: "spaces between text columns",
			Value: 2,
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
		},
		&cli.BoolFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Value:   false,
		},
	}

	return
}

// NewServerFlag constructs the "server" flag, optionally namespaced to a
// command and config file. params[1] is the config file.
func NewServerFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "server",
		Usage: "trace backend base URL",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TRACEDIFF_SERVER"),
		),
		Value: backend.DefaultServer,
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewColorFlag constructs the "color" flag. The color config key lets users
// turn color on everywhere.
func NewColorFlag(params ...string) *cli.BoolFlag {
	flag := &cli.BoolFlag{
		Name:    "color",
		Aliases: []string{"c"},
		Usage:   "enable colored text output",
		Sources: cli.NewValueSourceChain(cli.EnvVar("TRACEDIFF_COLOR")),
	}
	if len(params) == 2 {
		flag.Sources.Chain = append(flag.Sources.Chain, configSources(params[0], flag.Name, params[1])...)
	}
	return flag
}

// NewModeFlag constructs the diff "mode" flag, read from diff.mode or mode in
// the config file when not given.
func NewModeFlag(params ...string) *cli.StringFlag {
	flag := &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "display mode (split, unified, delta, patch)",
		Sources: cli.NewValueSourceChain(cli.EnvVar("TRACEDIFF_MODE")),
		Value:   string(differ.ModeUnified),
		Validator: func(value string) error {
			return FlagValidators(value, ModeValidator)
		},
	}
	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}
	return flag
}

// NewDepthFlag constructs the tree "depth" flag.
func NewDepthFlag(params ...string) *cli.IntFlag {
	flag := &cli.IntFlag{
		Name:    "depth",
		Aliases: []string{"d"},
		Usage:   "levels expanded by default (0 collapses the root)",
		Value:   0,
		Validator: func(value int) error {
			return FlagValidators(value, DepthValidator)
		},
	}
	if len(params) == 2 {
		flag.Sources = cli.NewValueSourceChain(configSources(params[0], flag.Name, params[1])...)
	}
	return flag
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	flag.Sources.Chain = append(flag.Sources.Chain, configSources(ns, flag.Name, path)...)
	return flag
}

// configSources returns the ns.name and name lookups in the YAML config file.
func configSources(ns, name, path string) []cli.ValueSource {
	return []cli.ValueSource{
		yaml.YAML(ns+"."+name, altsrc.StringSourcer(path)),
		yaml.YAML(name, altsrc.StringSourcer(path)),
	}
}

// pathHas reports whether target is on the PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
