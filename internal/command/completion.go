// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/meta"
)

const bashCompletionScript = `# bash completion for tracediff
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tracediff()
{
    local cur prev cmd opts
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "compare diff health runs spans tree completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local listing="--attrs -a --color -c --filter -f --local -l --output -o --padding --schema --server --sort -s --titles -t --tldr"

    case "$prev" in
        --mode|-m)
            COMPREPLY=( $(compgen -W "split unified delta patch" -- "$cur") )
            return 0
            ;;
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml raw" -- "$cur") )
            return 0
            ;;
    esac

    case "$cmd" in
        runs|spans)
            opts="$listing"
            ;;
        diff)
            opts="--all -A --color -c --filter -f --interactive -i --kind -k --mode -m --name -n --output -o --server --width -W --tldr"
            ;;
        compare)
            opts="--all -A --color -c --mode -m --width -W --tldr"
            ;;
        tree)
            opts="--color -c --depth -d --field --interactive -i --path -p --run --server --span --tldr"
            ;;
        health)
            opts="--server"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
    esac

    if [[ $cur == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    elif [[ $cmd == compare || $cmd == tree ]]; then
        COMPREPLY=( $(compgen -f -- "$cur") )
    fi
}
complete -F _tracediff tracediff
`

const zshCompletionScript = `#compdef tracediff

_tracediff() {
  local -a commands common listing
  commands=(
    'compare:compare two JSON documents'
    'diff:compare the spans of two runs'
    'health:check that the trace backend is reachable'
    'runs:list runs'
    'spans:list the spans of a run'
    'tree:render a JSON value as a collapsible tree'
    'completion:generate shell completion script'
  )
  common=(
    '(-c --color)'{-c,--color}'[enable colored output]'
    '--tldr[show tldr page]'
  )
  listing=(
    $common
    '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
    '(-f --filter)'{-f,--filter}'[filters to apply]:filter'
    '(-l --local)'{-l,--local}'[show local timestamps]'
    '(-o --output)'{-o,--output}'[output format]:format:(text json yaml raw)'
    '--padding[spaces between columns]:padding'
    '--schema[dump record keys]'
    '--server[trace backend base URL]:url'
    '(-s --sort)'{-s,--sort}'[sort attributes]:sort'
    '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe 'command' commands
    return
  fi

  case "$words[2]" in
    runs)
      _arguments -C $listing
      ;;
    spans)
      _arguments -C $listing '1:run:'
      ;;
    diff)
      _arguments -C \
        $common \
        '(-A --all)'{-A,--all}'[show sections without changes]' \
        '(-f --filter)'{-f,--filter}'[filters on matched pairs]:filter' \
        '(-i --interactive)'{-i,--interactive}'[open the viewer]' \
        '(-k --kind)'{-k,--kind}'[span kind]:kind' \
        '(-m --mode)'{-m,--mode}'[display mode]:mode:(split unified delta patch)' \
        '(-n --name)'{-n,--name}'[label contains]:name' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json raw)' \
        '--server[trace backend base URL]:url' \
        '(-W --width)'{-W,--width}'[split view width]:width' \
        '1:left run:' '2:right run:'
      ;;
    compare)
      _arguments -C \
        $common \
        '(-A --all)'{-A,--all}'[show sections without changes]' \
        '(-m --mode)'{-m,--mode}'[display mode]:mode:(split unified delta patch)' \
        '(-W --width)'{-W,--width}'[split view width]:width' \
        '1:left:_files' '2:right:_files'
      ;;
    tree)
      _arguments -C \
        $common \
        '(-d --depth)'{-d,--depth}'[levels expanded]:depth' \
        '--field[span attribute]:field' \
        '(-i --interactive)'{-i,--interactive}'[open the viewer]' \
        '(-p --path)'{-p,--path}'[subtree path]:path' \
        '--run[run id]:run' \
        '--server[trace backend base URL]:url' \
        '--span[span id]:span' \
        '::file:_files'
      ;;
    health)
      _arguments '--server[trace backend base URL]:url'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tracediff tracediff
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(cmd.Root().Writer, bashCompletionScript)
	case "zsh":
		fmt.Fprint(cmd.Root().Writer, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(cmd.Root().Writer, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(cmd.Root().Writer, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: tracediff completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tracediff completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
