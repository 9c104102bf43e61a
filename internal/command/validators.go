// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/differ"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// ArgCountValidator returns a Before hook requiring between lo and hi
// positional arguments.
func ArgCountValidator(lo, hi int) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, c *cli.Command) (context.Context, error) {
		n := c.Args().Len()
		switch {
		case n < lo || n > hi:
			if lo == hi {
				return ctx, fmt.Errorf("%s: expected %d argument(s), got %d", c.Name, lo, n)
			}
			return ctx, fmt.Errorf("%s: expected %d to %d arguments, got %d", c.Name, lo, hi, n)
		}
		return ctx, nil
	}
}

func OutputValidator(value any) error {
	return oneOf(value, []string{"text", "json", "raw", "yaml"})
}

// DiffOutputValidator limits diff output to formats that carry the whole
// result.
func DiffOutputValidator(value any) error {
	return oneOf(value, []string{"text", "json", "raw"})
}

func ModeValidator(value any) error {
	s, _ := value.(string)
	if _, err := differ.ParseMode(s); err != nil {
		return err
	}
	return nil
}

func DepthValidator(value any) error {
	if d, ok := value.(int); ok && d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func oneOf(value any, valid []string) error {
	s, _ := value.(string)
	if !slices.Contains(valid, s) {
		return fmt.Errorf("must be one of %v", valid)
	}
	return nil
}
