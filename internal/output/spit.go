// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/tracediff/internal/attrs"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/filters"
	"github.com/tfctl/tracediff/internal/log"
)

// Options controls how a listing is filtered, sorted and written.
type Options struct {
	// Output is text, json, yaml or raw.
	Output string
	Filter string
	Sort   string
	// Local adds a local time transform to every attr.
	Local bool
	Table TableOptions
}

// TableOptions controls text output.
type TableOptions struct {
	Color   bool
	Titles  bool
	Padding int
	Header  string
	Footer  string
}

// OptionsFrom reads the listing flags of cmd. Header and footer come from
// cmd.Metadata when a command sets them.
func OptionsFrom(cmd *cli.Command) Options {
	opts := Options{
		Output: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Local:  cmd.Bool("local"),
		Table: TableOptions{
			Color:   cmd.Bool("color"),
			Titles:  cmd.Bool("titles"),
			Padding: cmd.Int("padding"),
		},
	}
	if s, ok := cmd.Metadata["header"].(string); ok {
		opts.Table.Header = s
	}
	if s, ok := cmd.Metadata["footer"].(string); ok {
		opts.Table.Footer = s
	}
	return opts
}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// SliceDiceSpit filters, transforms, sorts and writes the records found at
// parent in raw. An empty parent means raw is the record list itself. The
// optional postProcess callback runs on the final rows before text output.
func SliceDiceSpit(raw []byte,
	attrs attrs.AttrList,
	opts Options,
	parent string,
	w io.Writer,
	postProcess func([]map[string]interface{}) error) error {

	if w == nil {
		w = os.Stdout
	}

	if opts.Output == "raw" {
		_, err := w.Write(raw)
		return err
	}

	fullDataset := gjson.ParseBytes(raw)
	if parent != "" {
		fullDataset = fullDataset.Get(parent)
	}

	// Filter first so the rest works on fewer rows.
	filteredDataset := filters.FilterDataset(fullDataset, attrs, opts.Filter)
	log.Debugf("listing rows: total=%d kept=%d", len(fullDataset.Array()), len(filteredDataset))

	// Timestamps from the backend are epoch seconds, so --local only touches
	// float and RFC 3339 values; everything else passes through unchanged.
	if opts.Local {
		for a := range attrs {
			attrs[a].TransformSpec += "t"
		}
	}

	for _, row := range filteredDataset {
		for _, attr := range attrs {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(filteredDataset, opts.Sort)

	switch opts.Output {
	case "json":
		jsonOutput, err := json.Marshal(filteredDataset)
		if err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonOutput))
		return err
	case "yaml":
		yamlOutput, err := yaml.Marshal(filteredDataset)
		if err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		_, err = w.Write(yamlOutput)
		return err
	default:
		if postProcess != nil {
			if err := postProcess(filteredDataset); err != nil {
				log.Errorf("post process: %v", err)
			}
		}

		TableWriter(filteredDataset, attrs, opts.Table, w)
	}

	return nil
}

// TableWriter renders the result set as an aligned, borderless table. Only
// included attrs become columns. If w is nil, os.Stdout is used.
func TableWriter(
	resultSet []map[string]interface{},
	attrs attrs.AttrList,
	opts TableOptions,
	w io.Writer) {

	if w == nil {
		w = os.Stdout
	}

	if len(resultSet) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	} else {
		headerStyle = headerStyle.Bold(false)
	}

	included := attrs.Included()

	rows := make([][]string, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(included))
		for _, attr := range included {
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)
	}

	if opts.Header != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Header))
	}

	pad := opts.Padding
	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Rows(rows...)

	if opts.Titles {
		headers := make([]string, 0, len(included))
		for _, attr := range included {
			headers = append(headers, attr.OutputKey)
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)

	if opts.Footer != "" {
		fmt.Fprintln(w, headerStyle.Render(opts.Footer))
	}
}

// getColors returns the title, even row and odd row colors. Explicit config
// values win; otherwise a default suited to the terminal background is used.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}
