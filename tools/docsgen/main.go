// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// docsgen writes a markdown page and a tldr page for every tracediff
// subcommand, taken from the command tree itself.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/command"
)

type Flag struct {
	ID          string
	Syntax      string
	Description string
	Default     string
}

type TemplateData struct {
	ID      string
	Short   string
	Usage   string
	Flags   []Flag
	Date    string
	Version string
}

type Outputs struct {
	Template *template.Template
	Folder   string
	Prefix   string
	Suffix   string
}

var markdown = template.Must(template.New("md").Parse(`# tracediff {{.ID}}

{{.Short}}

` + "```" + `
{{.Usage}}
` + "```" + `
{{if .Flags}}
## Flags

| Flag | Description | Default |
| ---- | ----------- | ------- |
{{range .Flags}}| ` + "`{{.Syntax}}`" + ` | {{.Description}} | {{.Default}} |
{{end}}{{end}}
_Generated {{.Date}} for {{.Version}}._
`))

var tldr = template.Must(template.New("tldr").Parse(`# tracediff {{.ID}}

> {{.Short}}.
{{range .Flags}}
- {{.Description}}:

` + "`tracediff {{$.ID}} {{.Syntax}}`" + `
{{end}}`))

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen DOCS_DIR")
		os.Exit(1)
	}
	docs := os.Args[1]

	app, err := command.InitApp(context.Background(), []string{"tracediff"})
	if err != nil {
		panic(err)
	}

	types := []Outputs{
		{Template: markdown, Folder: filepath.Join(docs, "commands"), Suffix: ".md"},
		{Template: tldr, Folder: filepath.Join(docs, "tldr"), Prefix: "tracediff-", Suffix: ".md"},
	}

	version := getVersion()
	for _, sub := range app.Commands {
		data := templateData(sub, version)
		for _, t := range types {
			if err := os.MkdirAll(t.Folder, 0o755); err != nil {
				panic(err)
			}

			path := filepath.Join(t.Folder, t.Prefix+data.ID+t.Suffix)
			fmt.Println("Generating", path)
			if err := write(path, t.Template, data); err != nil {
				panic(err)
			}
		}
	}
}

func write(path string, tmpl *template.Template, data TemplateData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return render(file, tmpl, data)
}

func render(w io.Writer, tmpl *template.Template, data TemplateData) error {
	return tmpl.Execute(w, data)
}

// templateData flattens a subcommand and its flags. Flags arrive sorted from
// InitApp.
func templateData(cmd *cli.Command, version string) TemplateData {
	data := TemplateData{
		ID:      cmd.Name,
		Short:   cmd.Usage,
		Usage:   cmd.UsageText,
		Date:    time.Now().Format("January 2, 2006"),
		Version: version,
	}

	for _, f := range cmd.Flags {
		names := f.Names()
		syntax := make([]string, 0, len(names))
		for _, n := range names {
			if len(n) == 1 {
				syntax = append(syntax, "-"+n)
			} else {
				syntax = append(syntax, "--"+n)
			}
		}

		fl := Flag{ID: names[0], Syntax: strings.Join(syntax, ", ")}
		if df, ok := f.(cli.DocGenerationFlag); ok {
			fl.Description = df.GetUsage()
			fl.Default = df.GetDefaultText()
		}
		data.Flags = append(data.Flags, fl)
	}
	return data
}

// getVersion returns the version string from git tags, stripping the leading
// "v" prefix. Falls back to "dev" if git describe fails.
func getVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
}
