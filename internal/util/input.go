// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Stdin is the input name that reads standard input.
const Stdin = "-"

// ErrStdinTwice is returned when more than one input names stdin.
var ErrStdinTwice = errors.New("stdin (-) may be used for only one input")

// ReadInput reads a JSON document from a file, or from stdin when name is "-"
// or empty. Relative names are resolved against the working directory. It
// returns an error if the file does not exist or is a directory.
func ReadInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == Stdin {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	path, err := resolve(name)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("input does not exist: %s", name)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("input cannot be a directory: %s", name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// ReadInputs reads each named input in order. At most one may be stdin.
func ReadInputs(stdin io.Reader, names ...string) ([][]byte, error) {
	seen := false
	for _, n := range names {
		if n == Stdin {
			if seen {
				return nil, ErrStdinTwice
			}
			seen = true
		}
	}

	out := make([][]byte, 0, len(names))
	for _, n := range names {
		data, err := ReadInput(n, stdin)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// resolve makes name absolute, expanding a leading ~/.
func resolve(name string) (string, error) {
	if rest, ok := strings.CutPrefix(name, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
